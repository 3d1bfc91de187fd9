package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

// AdFlow serves the public read side of ads and their participation
type AdFlow interface {
	ListAds(ctx context.Context, req *dto.ListAdsRequest) (*dto.ListAdsResponse, error)
	GetAd(ctx context.Context, adID uint) (*dto.GetAdResponse, error)
	ListComments(ctx context.Context, adID uint) (*dto.ListCommentsResponse, error)
	ListUGC(ctx context.Context, adID uint) (*dto.ListUGCResponse, error)
	GetSurvey(ctx context.Context, adID uint) (*dto.GetSurveyResponse, error)
	GetMyParticipation(ctx context.Context, userID uint) (*dto.MyParticipationResponse, error)
}

// AdFlowImpl implements AdFlow
type AdFlowImpl struct {
	ads           adLoader
	adRepo        repository.AdRepository
	commentRepo   repository.CommentRepository
	ugcRepo       repository.UGCRepository
	surveyRepo    repository.SurveyRepository
	answerRepo    repository.SurveyAnswerRepository
	applicantRepo repository.TesterApplicantRepository
	logger        *zap.Logger
}

// NewAdFlow creates a new ad flow; adCache may be nil
func NewAdFlow(
	adRepo repository.AdRepository,
	commentRepo repository.CommentRepository,
	ugcRepo repository.UGCRepository,
	surveyRepo repository.SurveyRepository,
	answerRepo repository.SurveyAnswerRepository,
	applicantRepo repository.TesterApplicantRepository,
	adCache AdCache,
	logger *zap.Logger,
) AdFlow {
	return &AdFlowImpl{
		ads:           adLoader{repo: adRepo, cache: adCache},
		adRepo:        adRepo,
		commentRepo:   commentRepo,
		ugcRepo:       ugcRepo,
		surveyRepo:    surveyRepo,
		answerRepo:    answerRepo,
		applicantRepo: applicantRepo,
		logger:        logger,
	}
}

// ListAds pages through active ads newest first. The cursor is the creation time
// of the last ad of the previous page.
func (f *AdFlowImpl) ListAds(ctx context.Context, req *dto.ListAdsRequest) (*dto.ListAdsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = utils.DefaultAdsPageSize
	}
	if limit > utils.MaxAdsPageSize {
		limit = utils.MaxAdsPageSize
	}

	var before *time.Time
	if cursor := strings.TrimSpace(req.Cursor); cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, NewBusinessError("INVALID_CURSOR", "Cursor is not valid", ErrInvalidCursor)
		}
		t = t.UTC()
		before = &t
	}

	rows, err := f.adRepo.ListActive(ctx, before, limit+1)
	if err != nil {
		return nil, NewBusinessError("LIST_ADS_FAILED", "Failed to list ads", err)
	}

	var next *string
	if len(rows) > limit {
		rows = rows[:limit]
		c := rows[len(rows)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
		next = &c
	}

	items := make([]dto.AdItem, 0, len(rows))
	for _, ad := range rows {
		items = append(items, ToAdItem(*ad))
	}
	return &dto.ListAdsResponse{
		Message:    "Ads retrieved",
		Ads:        items,
		NextCursor: next,
	}, nil
}

// GetAd returns one ad
func (f *AdFlowImpl) GetAd(ctx context.Context, adID uint) (*dto.GetAdResponse, error) {
	ad, err := f.existingAd(ctx, adID)
	if err != nil {
		return nil, err
	}
	return &dto.GetAdResponse{
		Message: "Ad retrieved",
		Ad:      ToAdItem(*ad),
	}, nil
}

// ListComments returns approved and adopted comments, pinned first then newest
func (f *AdFlowImpl) ListComments(ctx context.Context, adID uint) (*dto.ListCommentsResponse, error) {
	ad, err := f.existingAd(ctx, adID)
	if err != nil {
		return nil, err
	}

	rows, err := f.commentRepo.ListPublicByAd(ctx, ad.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_COMMENTS_FAILED", "Failed to list comments", err)
	}

	items := make([]dto.CommentItem, 0, len(rows))
	for _, c := range rows {
		items = append(items, ToCommentItem(*c))
	}
	return &dto.ListCommentsResponse{
		Message:  "Comments retrieved",
		Comments: items,
	}, nil
}

// ListUGC returns approved and adopted UGC ordered by quality score then newest
func (f *AdFlowImpl) ListUGC(ctx context.Context, adID uint) (*dto.ListUGCResponse, error) {
	ad, err := f.existingAd(ctx, adID)
	if err != nil {
		return nil, err
	}

	rows, err := f.ugcRepo.ListPublicByAd(ctx, ad.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_UGC_FAILED", "Failed to list UGC", err)
	}

	items := make([]dto.UGCItem, 0, len(rows))
	for _, u := range rows {
		items = append(items, ToUGCItem(*u))
	}
	return &dto.ListUGCResponse{
		Message: "UGC retrieved",
		Items:   items,
	}, nil
}

// GetSurvey returns the ad's active survey with its questions in order
func (f *AdFlowImpl) GetSurvey(ctx context.Context, adID uint) (*dto.GetSurveyResponse, error) {
	ad, err := f.existingAd(ctx, adID)
	if err != nil {
		return nil, err
	}
	if !ad.HasSurvey {
		return nil, NewBusinessError("SURVEY_NOT_FOUND", "This ad has no active survey", ErrSurveyNotFound)
	}

	survey, err := f.surveyRepo.ActiveByAd(ctx, ad.ID)
	if err != nil {
		return nil, NewBusinessError("GET_SURVEY_FAILED", "Failed to load survey", err)
	}
	if survey == nil {
		return nil, NewBusinessError("SURVEY_NOT_FOUND", "This ad has no active survey", ErrSurveyNotFound)
	}
	return &dto.GetSurveyResponse{
		Message: "Survey retrieved",
		Survey:  ToSurveyItem(*survey),
	}, nil
}

// GetMyParticipation gathers the user's comments, UGC, survey answers and tester applications
func (f *AdFlowImpl) GetMyParticipation(ctx context.Context, userID uint) (*dto.MyParticipationResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	const order = "created_at DESC, id DESC"

	comments, err := f.commentRepo.ByFilter(ctx, models.CommentFilter{UserID: &userID}, order, 0, 0)
	if err != nil {
		return nil, NewBusinessError("GET_PARTICIPATION_FAILED", "Failed to list comments", err)
	}
	ugc, err := f.ugcRepo.ByFilter(ctx, models.UGCFilter{UserID: &userID}, order, 0, 0)
	if err != nil {
		return nil, NewBusinessError("GET_PARTICIPATION_FAILED", "Failed to list UGC", err)
	}
	answers, err := f.answerRepo.ByFilter(ctx, models.SurveyAnswerFilter{UserID: &userID}, "survey_id ASC, question_id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("GET_PARTICIPATION_FAILED", "Failed to list survey answers", err)
	}
	applications, err := f.applicantRepo.ByFilter(ctx, models.TesterApplicantFilter{UserID: &userID}, order, 0, 0)
	if err != nil {
		return nil, NewBusinessError("GET_PARTICIPATION_FAILED", "Failed to list applications", err)
	}

	resp := &dto.MyParticipationResponse{
		Message:       "Participation retrieved",
		Comments:      make([]dto.CommentItem, 0, len(comments)),
		UGC:           make([]dto.UGCItem, 0, len(ugc)),
		SurveyAnswers: make([]dto.SurveyAnswerItem, 0, len(answers)),
		Applications:  make([]dto.TesterApplicantItem, 0, len(applications)),
	}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, ToCommentItem(*c))
	}
	for _, u := range ugc {
		resp.UGC = append(resp.UGC, ToUGCItem(*u))
	}
	for _, a := range answers {
		resp.SurveyAnswers = append(resp.SurveyAnswers, ToSurveyAnswerItem(*a))
	}
	for _, a := range applications {
		resp.Applications = append(resp.Applications, ToTesterApplicantItem(*a))
	}
	return resp, nil
}

func (f *AdFlowImpl) existingAd(ctx context.Context, adID uint) (*models.Ad, error) {
	ad, err := f.ads.load(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil || ad.Status == models.AdStatusDraft {
		return nil, NewBusinessError("AD_NOT_FOUND", "Ad not found", ErrAdNotFound)
	}
	return ad, nil
}
