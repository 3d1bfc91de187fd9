package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TesterFlow handles tester campaign applications and reports
type TesterFlow interface {
	Apply(ctx context.Context, req *dto.ApplyTesterRequest, metadata *ClientMetadata) (*dto.ApplyTesterResponse, error)
	SubmitReport(ctx context.Context, req *dto.SubmitTesterReportRequest, metadata *ClientMetadata) (*dto.SubmitTesterReportResponse, error)
	SelectApplicant(ctx context.Context, req *dto.SelectApplicantRequest, metadata *ClientMetadata) (*dto.SelectApplicantResponse, error)
	GetOpenCampaign(ctx context.Context, adID uint) (*dto.GetTesterCampaignResponse, error)
	ExportApplicants(ctx context.Context, req *dto.ExportApplicantsRequest) (*dto.ExportApplicantsResponse, error)
	ListMyApplications(ctx context.Context, userID uint) (*dto.ListMyApplicationsResponse, error)
}

// TesterFlowImpl implements TesterFlow
type TesterFlowImpl struct {
	ads           adLoader
	exposures     exposureRecorder
	audits        auditRecorder
	campaignRepo  repository.TesterCampaignRepository
	applicantRepo repository.TesterApplicantRepository
	reportRepo    repository.TesterReportRepository
	db            *gorm.DB
	logger        *zap.Logger
	now           func() time.Time
}

// NewTesterFlow creates a new tester flow; adCache may be nil
func NewTesterFlow(
	adRepo repository.AdRepository,
	campaignRepo repository.TesterCampaignRepository,
	applicantRepo repository.TesterApplicantRepository,
	reportRepo repository.TesterReportRepository,
	exposureRepo repository.AdExposureRepository,
	auditRepo repository.AuditLogRepository,
	adCache AdCache,
	db *gorm.DB,
	logger *zap.Logger,
) TesterFlow {
	return &TesterFlowImpl{
		ads:           adLoader{repo: adRepo, cache: adCache},
		exposures:     exposureRecorder{repo: exposureRepo, logger: logger},
		audits:        auditRecorder{repo: auditRepo, logger: logger},
		campaignRepo:  campaignRepo,
		applicantRepo: applicantRepo,
		reportRepo:    reportRepo,
		db:            db,
		logger:        logger,
		now:           utils.UTCNow,
	}
}

// Apply enrolls the user in the ad's open tester campaign.
// The campaign row is locked while the applicant count is checked and the row inserted.
func (f *TesterFlowImpl) Apply(ctx context.Context, req *dto.ApplyTesterRequest, metadata *ClientMetadata) (_ *dto.ApplyTesterResponse, err error) {
	defer func() { observe("tester_apply", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	ad, err := f.ads.fresh(ctx, req.AdID)
	if err != nil {
		return nil, err
	}
	if ad == nil || !ad.Accepts(models.ParticipationTester) {
		return nil, NewBusinessError("NO_OPEN_CAMPAIGN", "This ad has no open tester campaign", ErrNoOpenCampaign)
	}

	campaign, err := f.campaignRepo.OpenByAd(ctx, ad.ID, f.now())
	if err != nil {
		return nil, NewBusinessError("TESTER_APPLY_FAILED", "Failed to load tester campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("NO_OPEN_CAMPAIGN", "This ad has no open tester campaign", ErrNoOpenCampaign)
	}

	var applicant *models.TesterApplicant
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.campaignRepo.LockByID(txCtx, campaign.ID)
		if err != nil {
			return NewBusinessError("TESTER_APPLY_FAILED", "Failed to lock tester campaign", err)
		}
		if locked == nil || !locked.IsAcceptingApplications() {
			return NewBusinessError("NO_OPEN_CAMPAIGN", "This ad has no open tester campaign", ErrNoOpenCampaign)
		}

		existing, err := f.applicantRepo.ByCampaignAndUser(txCtx, locked.ID, req.UserID)
		if err != nil {
			return NewBusinessError("TESTER_APPLY_FAILED", "Failed to check existing application", err)
		}
		if existing != nil {
			return NewBusinessError("ALREADY_APPLIED", "You have already applied to this campaign", ErrAlreadyApplied)
		}

		applied, err := f.applicantRepo.Count(txCtx, models.TesterApplicantFilter{CampaignID: &locked.ID})
		if err != nil {
			return NewBusinessError("TESTER_APPLY_FAILED", "Failed to count applicants", err)
		}
		if applied >= int64(locked.MaxApplicants) {
			return NewBusinessError("CAMPAIGN_FULL", "This tester campaign is full", ErrCampaignFull)
		}

		data := datatypes.JSONMap(req.ApplicationData)
		if data == nil {
			data = datatypes.JSONMap{}
		}
		applicant = &models.TesterApplicant{
			CampaignID:      locked.ID,
			UserID:          req.UserID,
			ApplicationData: data,
			Status:          models.ApplicantStatusPending,
		}
		if err := f.applicantRepo.Save(txCtx, applicant); err != nil {
			if repository.IsDuplicateKey(err) {
				return NewBusinessError("ALREADY_APPLIED", "You have already applied to this campaign", ErrAlreadyApplied)
			}
			return NewBusinessError("TESTER_APPLY_FAILED", "Failed to record application", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exposure := f.exposures.record(ctx, ad.ID, req.UserID, models.ParticipationTester)

	return &dto.ApplyTesterResponse{
		Message:     "Application submitted",
		Applicant:   ToTesterApplicantItem(*applicant),
		SideEffects: []dto.SideEffect{exposure},
	}, nil
}

// SubmitReport files the tester report and completes the application in one transaction
func (f *TesterFlowImpl) SubmitReport(ctx context.Context, req *dto.SubmitTesterReportRequest, metadata *ClientMetadata) (_ *dto.SubmitTesterReportResponse, err error) {
	defer func() { observe("tester_submit_report", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, NewBusinessError("INVALID_CONTENT", "Report content is required", ErrInvalidContent)
	}
	if utf8.RuneCountInString(content) > utils.MaxReportLength {
		return nil, NewBusinessErrorf("CONTENT_TOO_LONG", "Report must be at most %d characters", ErrContentTooLong, utils.MaxReportLength)
	}
	if len(req.MediaURLs) > utils.MaxReportMediaURLs {
		return nil, NewBusinessErrorf("TOO_MANY_MEDIA_URLS", "At most %d media URLs are allowed", ErrTooManyMediaURLs, utils.MaxReportMediaURLs)
	}
	mediaURLs := make(models.StringList, 0, len(req.MediaURLs))
	for _, u := range req.MediaURLs {
		u = strings.TrimSpace(u)
		if u == "" || len(u) > utils.MaxMediaURLLength {
			return nil, NewBusinessError("INVALID_MEDIA_URL", "Media URLs must be non-empty", ErrInvalidMediaURL)
		}
		mediaURLs = append(mediaURLs, u)
	}

	var (
		report    *models.TesterReport
		applicant *models.TesterApplicant
	)
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		applicant, err = f.selectedApplicant(txCtx, req.UserID, req.ApplicantID)
		if err != nil {
			return err
		}

		report = &models.TesterReport{
			ApplicantID: applicant.ID,
			Content:     content,
			MediaURLs:   mediaURLs,
		}
		if err := f.reportRepo.Save(txCtx, report); err != nil {
			return NewBusinessError("SUBMIT_REPORT_FAILED", "Failed to save tester report", err)
		}

		affected, err := f.applicantRepo.UpdateStatusIf(txCtx, applicant.ID, models.ApplicantStatusSelected, models.ApplicantStatusCompleted)
		if err != nil {
			return NewBusinessError("SUBMIT_REPORT_FAILED", "Failed to complete application", err)
		}
		if affected == 0 {
			return NewBusinessError("NO_SELECTED_APPLICATION", "No selected application found", ErrNoSelectedApplication)
		}
		applicant.Status = models.ApplicantStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.SubmitTesterReportResponse{
		Message:   "Report submitted",
		Report:    ToTesterReportItem(*report),
		Applicant: ToTesterApplicantItem(*applicant),
	}, nil
}

func (f *TesterFlowImpl) selectedApplicant(ctx context.Context, userID uint, applicantID *uint) (*models.TesterApplicant, error) {
	var (
		applicant *models.TesterApplicant
		err       error
	)
	if applicantID != nil {
		applicant, err = f.applicantRepo.ByID(ctx, *applicantID)
	} else {
		applicant, err = f.applicantRepo.LatestByUserAndStatus(ctx, userID, models.ApplicantStatusSelected)
	}
	if err != nil {
		return nil, NewBusinessError("SUBMIT_REPORT_FAILED", "Failed to load application", err)
	}
	if applicant == nil || applicant.UserID != userID || applicant.Status != models.ApplicantStatusSelected {
		return nil, NewBusinessError("NO_SELECTED_APPLICATION", "No selected application found", ErrNoSelectedApplication)
	}
	return applicant, nil
}

// SelectApplicant moves a pending applicant to selected for the advertiser owning the campaign's ad
func (f *TesterFlowImpl) SelectApplicant(ctx context.Context, req *dto.SelectApplicantRequest, metadata *ClientMetadata) (_ *dto.SelectApplicantResponse, err error) {
	defer func() { observe("tester_select_applicant", err) }()

	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	applicant, err := f.applicantRepo.ByID(ctx, req.ApplicantID)
	if err != nil {
		return nil, NewBusinessError("SELECT_APPLICANT_FAILED", "Failed to load applicant", err)
	}
	if applicant == nil {
		return nil, NewBusinessError("APPLICANT_NOT_FOUND", "Applicant not found", ErrApplicantNotFound)
	}
	campaign, err := f.campaignRepo.ByID(ctx, applicant.CampaignID)
	if err != nil {
		return nil, NewBusinessError("SELECT_APPLICANT_FAILED", "Failed to load tester campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Tester campaign not found", ErrCampaignNotFound)
	}
	if _, err := f.ads.ownedAd(ctx, campaign.AdID, req.AdvertiserID); err != nil {
		return nil, err
	}

	if !applicant.Status.CanTransitionTo(models.ApplicantStatusSelected) {
		return nil, NewBusinessError("APPLICANT_NOT_PENDING", "Only pending applicants can be selected", ErrApplicantNotPending)
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		affected, err := f.applicantRepo.UpdateStatusIf(txCtx, applicant.ID, models.ApplicantStatusPending, models.ApplicantStatusSelected)
		if err != nil {
			return NewBusinessError("SELECT_APPLICANT_FAILED", "Failed to select applicant", err)
		}
		if affected == 0 {
			return NewBusinessError("APPLICANT_NOT_PENDING", "Only pending applicants can be selected", ErrApplicantNotPending)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	applicant.Status = models.ApplicantStatusSelected

	audit := f.audits.record(ctx, req.AdvertiserID, models.AuditActionApplicantSelected, "tester_applicant", applicant.ID,
		fmt.Sprintf("Applicant %d selected for campaign %d", applicant.ID, campaign.ID),
		map[string]any{"campaign_id": campaign.ID, "user_id": applicant.UserID},
		metadata,
	)

	return &dto.SelectApplicantResponse{
		Message:     "Applicant selected",
		Applicant:   ToTesterApplicantItem(*applicant),
		SideEffects: []dto.SideEffect{audit},
	}, nil
}

// GetOpenCampaign returns the ad's open campaign with its derived applicant count
func (f *TesterFlowImpl) GetOpenCampaign(ctx context.Context, adID uint) (*dto.GetTesterCampaignResponse, error) {
	ad, err := f.ads.load(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil || !ad.Accepts(models.ParticipationTester) {
		return nil, NewBusinessError("NO_OPEN_CAMPAIGN", "This ad has no open tester campaign", ErrNoOpenCampaign)
	}

	campaign, err := f.campaignRepo.OpenByAd(ctx, ad.ID, f.now())
	if err != nil {
		return nil, NewBusinessError("GET_CAMPAIGN_FAILED", "Failed to load tester campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("NO_OPEN_CAMPAIGN", "This ad has no open tester campaign", ErrNoOpenCampaign)
	}

	applied, err := f.applicantRepo.Count(ctx, models.TesterApplicantFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("GET_CAMPAIGN_FAILED", "Failed to count applicants", err)
	}

	return &dto.GetTesterCampaignResponse{
		Message:  "Tester campaign retrieved",
		Campaign: ToTesterCampaignItem(*campaign, applied),
	}, nil
}

// ExportApplicants renders the campaign's applicants as an xlsx workbook
func (f *TesterFlowImpl) ExportApplicants(ctx context.Context, req *dto.ExportApplicantsRequest) (*dto.ExportApplicantsResponse, error) {
	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	campaign, err := f.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("EXPORT_APPLICANTS_FAILED", "Failed to load tester campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Tester campaign not found", ErrCampaignNotFound)
	}
	if _, err := f.ads.ownedAd(ctx, campaign.AdID, req.AdvertiserID); err != nil {
		return nil, err
	}

	applicants, err := f.applicantRepo.ByFilter(ctx, models.TesterApplicantFilter{CampaignID: &campaign.ID}, "created_at ASC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("EXPORT_APPLICANTS_FAILED", "Failed to list applicants", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "applicants"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	rows := make([][]string, 0, len(applicants)+1)
	rows = append(rows, []string{"id", "user_id", "status", "application_data", "created_at"})
	for _, a := range applicants {
		data := ""
		if len(a.ApplicationData) > 0 {
			if bs, err := a.ApplicationData.MarshalJSON(); err == nil {
				data = string(bs)
			}
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(a.ID), 10),
			strconv.FormatUint(uint64(a.UserID), 10),
			string(a.Status),
			data,
			formatTime(a.CreatedAt),
		})
	}
	if err := writeSheetRows(xl, sheet, rows); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.ExportApplicantsResponse{
		FileName: fmt.Sprintf("tester_campaign_%d_applicants.xlsx", campaign.ID),
		Content:  buf.Bytes(),
		Rows:     len(applicants),
	}, nil
}

// writeSheetRows writes rows top to bottom starting at A1
func writeSheetRows(xl *excelize.File, sheet string, rows [][]string) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}

// ListMyApplications returns every application of the user, newest first
func (f *TesterFlowImpl) ListMyApplications(ctx context.Context, userID uint) (*dto.ListMyApplicationsResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := f.applicantRepo.ByFilter(ctx, models.TesterApplicantFilter{UserID: &userID}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_APPLICATIONS_FAILED", "Failed to list applications", err)
	}

	items := make([]dto.TesterApplicantItem, 0, len(rows))
	for _, a := range rows {
		items = append(items, ToTesterApplicantItem(*a))
	}
	return &dto.ListMyApplicationsResponse{
		Message:      "Applications retrieved",
		Applications: items,
	}, nil
}
