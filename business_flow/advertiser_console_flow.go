package businessflow

import (
	"context"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

// AdvertiserConsoleFlow serves the advertiser's moderation read side
type AdvertiserConsoleFlow interface {
	GetConsole(ctx context.Context, req *dto.AdvertiserConsoleRequest) (*dto.AdvertiserConsoleResponse, error)
	ListCampaignApplicants(ctx context.Context, req *dto.ListCampaignApplicantsRequest) (*dto.ListCampaignApplicantsResponse, error)
}

// AdvertiserConsoleFlowImpl implements AdvertiserConsoleFlow
type AdvertiserConsoleFlowImpl struct {
	ads           adLoader
	adRepo        repository.AdRepository
	commentRepo   repository.CommentRepository
	ugcRepo       repository.UGCRepository
	campaignRepo  repository.TesterCampaignRepository
	applicantRepo repository.TesterApplicantRepository
	logger        *zap.Logger
}

// NewAdvertiserConsoleFlow creates a new advertiser console flow; adCache may be nil
func NewAdvertiserConsoleFlow(
	adRepo repository.AdRepository,
	commentRepo repository.CommentRepository,
	ugcRepo repository.UGCRepository,
	campaignRepo repository.TesterCampaignRepository,
	applicantRepo repository.TesterApplicantRepository,
	adCache AdCache,
	logger *zap.Logger,
) AdvertiserConsoleFlow {
	return &AdvertiserConsoleFlowImpl{
		ads:           adLoader{repo: adRepo, cache: adCache},
		adRepo:        adRepo,
		commentRepo:   commentRepo,
		ugcRepo:       ugcRepo,
		campaignRepo:  campaignRepo,
		applicantRepo: applicantRepo,
		logger:        logger,
	}
}

// GetConsole returns the advertiser's ads in every status, recent comments and UGC in every
// status, tester campaigns with applicant counts, and the headline metrics
func (f *AdvertiserConsoleFlowImpl) GetConsole(ctx context.Context, req *dto.AdvertiserConsoleRequest) (*dto.AdvertiserConsoleResponse, error) {
	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	ads, err := f.consoleAds(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.AdvertiserConsoleResponse{
		Message:        "Console retrieved",
		Ads:            make([]dto.AdItem, 0, len(ads)),
		RecentComments: []dto.CommentItem{},
		RecentUGC:      []dto.UGCItem{},
		Campaigns:      []dto.TesterCampaignItem{},
	}
	adIDs := make([]uint, 0, len(ads))
	for _, ad := range ads {
		adIDs = append(adIDs, ad.ID)
		resp.Ads = append(resp.Ads, ToAdItem(*ad))
		if ad.Status == models.AdStatusActive {
			resp.Metrics.ActiveAds++
		}
	}
	resp.Metrics.TotalAds = int64(len(ads))
	if len(adIDs) == 0 {
		return resp, nil
	}

	pending := []models.ParticipationStatus{models.ParticipationStatusPending}

	comments, err := f.commentRepo.ByFilter(ctx, models.CommentFilter{AdIDs: adIDs}, "created_at DESC, id DESC", utils.ConsoleRecentLimit, 0)
	if err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to list comments", err)
	}
	for _, c := range comments {
		resp.RecentComments = append(resp.RecentComments, ToCommentItem(*c))
	}
	if resp.Metrics.PendingComments, err = f.commentRepo.Count(ctx, models.CommentFilter{AdIDs: adIDs, Statuses: pending}); err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to count pending comments", err)
	}

	items, err := f.ugcRepo.ByFilter(ctx, models.UGCFilter{AdIDs: adIDs}, "created_at DESC, id DESC", utils.ConsoleRecentLimit, 0)
	if err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to list UGC", err)
	}
	for _, u := range items {
		resp.RecentUGC = append(resp.RecentUGC, ToUGCItem(*u))
	}
	if resp.Metrics.PendingUGC, err = f.ugcRepo.Count(ctx, models.UGCFilter{AdIDs: adIDs, Statuses: pending}); err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to count pending UGC", err)
	}

	campaigns, err := f.campaignRepo.ByFilter(ctx, models.TesterCampaignFilter{AdIDs: adIDs}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to list tester campaigns", err)
	}
	for _, c := range campaigns {
		applied, err := f.applicantRepo.Count(ctx, models.TesterApplicantFilter{CampaignID: &c.ID})
		if err != nil {
			return nil, NewBusinessError("CONSOLE_FAILED", "Failed to count applicants", err)
		}
		resp.Campaigns = append(resp.Campaigns, ToTesterCampaignItem(*c, applied))
		if c.Status == models.TesterCampaignStatusOpen {
			resp.Metrics.OpenCampaigns++
		}
	}

	return resp, nil
}

func (f *AdvertiserConsoleFlowImpl) consoleAds(ctx context.Context, req *dto.AdvertiserConsoleRequest) ([]*models.Ad, error) {
	if req.AdID != 0 {
		ad, err := f.ads.ownedAd(ctx, req.AdID, req.AdvertiserID)
		if err != nil {
			return nil, err
		}
		return []*models.Ad{ad}, nil
	}

	ads, err := f.adRepo.ByFilter(ctx, models.AdFilter{AdvertiserID: &req.AdvertiserID}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CONSOLE_FAILED", "Failed to list ads", err)
	}
	return ads, nil
}

// ListCampaignApplicants lists a campaign's applicants, optionally by status, for selection
func (f *AdvertiserConsoleFlowImpl) ListCampaignApplicants(ctx context.Context, req *dto.ListCampaignApplicantsRequest) (*dto.ListCampaignApplicantsResponse, error) {
	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	campaign, err := f.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("LIST_APPLICANTS_FAILED", "Failed to load tester campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Tester campaign not found", ErrCampaignNotFound)
	}
	if _, err := f.ads.ownedAd(ctx, campaign.AdID, req.AdvertiserID); err != nil {
		return nil, err
	}

	filter := models.TesterApplicantFilter{CampaignID: &campaign.ID}
	if req.Status != "" {
		status := models.ApplicantStatus(req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("INVALID_STATUS", "Unknown applicant status", ErrInvalidStatus)
		}
		filter.Status = &status
	}

	applicants, err := f.applicantRepo.ByFilter(ctx, filter, "created_at ASC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_APPLICANTS_FAILED", "Failed to list applicants", err)
	}
	applied, err := f.applicantRepo.Count(ctx, models.TesterApplicantFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_APPLICANTS_FAILED", "Failed to count applicants", err)
	}

	items := make([]dto.TesterApplicantItem, 0, len(applicants))
	for _, a := range applicants {
		items = append(items, ToTesterApplicantItem(*a))
	}
	return &dto.ListCampaignApplicantsResponse{
		Message:    "Applicants retrieved",
		Campaign:   ToTesterCampaignItem(*campaign, applied),
		Applicants: items,
	}, nil
}
