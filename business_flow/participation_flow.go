package businessflow

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParticipationFlow records comments, UGC and survey answers on ads
type ParticipationFlow interface {
	RecordComment(ctx context.Context, req *dto.CreateCommentRequest, metadata *ClientMetadata) (*dto.CreateCommentResponse, error)
	RecordUGC(ctx context.Context, req *dto.CreateUGCRequest, metadata *ClientMetadata) (*dto.CreateUGCResponse, error)
	RecordSurveyAnswers(ctx context.Context, req *dto.SubmitSurveyAnswersRequest, metadata *ClientMetadata) (*dto.SubmitSurveyAnswersResponse, error)
}

// ParticipationFlowImpl implements ParticipationFlow
type ParticipationFlowImpl struct {
	ads         adLoader
	exposures   exposureRecorder
	commentRepo repository.CommentRepository
	ugcRepo     repository.UGCRepository
	surveyRepo  repository.SurveyRepository
	answerRepo  repository.SurveyAnswerRepository
	db          *gorm.DB
	logger      *zap.Logger
}

// NewParticipationFlow creates a new participation flow; adCache may be nil
func NewParticipationFlow(
	adRepo repository.AdRepository,
	commentRepo repository.CommentRepository,
	ugcRepo repository.UGCRepository,
	surveyRepo repository.SurveyRepository,
	answerRepo repository.SurveyAnswerRepository,
	exposureRepo repository.AdExposureRepository,
	adCache AdCache,
	db *gorm.DB,
	logger *zap.Logger,
) ParticipationFlow {
	return &ParticipationFlowImpl{
		ads:         adLoader{repo: adRepo, cache: adCache},
		exposures:   exposureRecorder{repo: exposureRepo, logger: logger},
		commentRepo: commentRepo,
		ugcRepo:     ugcRepo,
		surveyRepo:  surveyRepo,
		answerRepo:  answerRepo,
		db:          db,
		logger:      logger,
	}
}

// RecordComment stores a pending comment and logs an exposure
func (f *ParticipationFlowImpl) RecordComment(ctx context.Context, req *dto.CreateCommentRequest, metadata *ClientMetadata) (_ *dto.CreateCommentResponse, err error) {
	defer func() { observe("record_comment", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, NewBusinessError("INVALID_CONTENT", "Comment content is required", ErrInvalidContent)
	}
	if utf8.RuneCountInString(content) > utils.MaxCommentLength {
		return nil, NewBusinessErrorf("CONTENT_TOO_LONG", "Comment must be at most %d characters", ErrContentTooLong, utils.MaxCommentLength)
	}

	ad, err := f.ads.participationTarget(ctx, req.AdID, models.ParticipationComment)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := f.commentRepo.ByID(ctx, *req.ParentID)
		if err != nil {
			return nil, NewBusinessError("RECORD_COMMENT_FAILED", "Failed to load parent comment", err)
		}
		if parent == nil || parent.AdID != ad.ID {
			return nil, NewBusinessError("INVALID_PARENT", "Parent comment does not belong to this ad", ErrInvalidParent)
		}
	}

	comment := &models.Comment{
		AdID:     ad.ID,
		UserID:   req.UserID,
		Content:  content,
		Status:   models.ParticipationStatusPending,
		ParentID: req.ParentID,
	}
	if err := f.commentRepo.Save(ctx, comment); err != nil {
		return nil, NewBusinessError("RECORD_COMMENT_FAILED", "Failed to record comment", err)
	}

	exposure := f.exposures.record(ctx, ad.ID, req.UserID, models.ParticipationComment)

	return &dto.CreateCommentResponse{
		Message:     "Comment recorded",
		Comment:     ToCommentItem(*comment),
		SideEffects: []dto.SideEffect{exposure},
	}, nil
}

// RecordUGC stores a pending UGC submission and logs an exposure
func (f *ParticipationFlowImpl) RecordUGC(ctx context.Context, req *dto.CreateUGCRequest, metadata *ClientMetadata) (_ *dto.CreateUGCResponse, err error) {
	defer func() { observe("record_ugc", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	mediaURL := strings.TrimSpace(req.MediaURL)
	if mediaURL == "" || len(mediaURL) > utils.MaxMediaURLLength {
		return nil, NewBusinessError("INVALID_MEDIA_URL", "A media URL is required", ErrInvalidMediaURL)
	}
	ugcType := models.UGCType(req.Type)
	if !ugcType.Valid() {
		return nil, NewBusinessError("INVALID_UGC_TYPE", "Type must be image or video", ErrInvalidUGCType)
	}

	ad, err := f.ads.participationTarget(ctx, req.AdID, models.ParticipationUGC)
	if err != nil {
		return nil, err
	}

	var thumbnail *string
	if req.ThumbnailURL != nil {
		if t := strings.TrimSpace(*req.ThumbnailURL); t != "" {
			thumbnail = &t
		}
	}

	item := &models.UGCItem{
		AdID:         ad.ID,
		UserID:       req.UserID,
		MediaURL:     mediaURL,
		ThumbnailURL: thumbnail,
		Type:         ugcType,
		Status:       models.ParticipationStatusPending,
		QualityScore: 0,
		PRBadge:      false,
	}
	if err := f.ugcRepo.Save(ctx, item); err != nil {
		return nil, NewBusinessError("RECORD_UGC_FAILED", "Failed to record UGC", err)
	}

	exposure := f.exposures.record(ctx, ad.ID, req.UserID, models.ParticipationUGC)

	return &dto.CreateUGCResponse{
		Message:     "UGC recorded",
		UGC:         ToUGCItem(*item),
		SideEffects: []dto.SideEffect{exposure},
	}, nil
}

// RecordSurveyAnswers upserts a batch of answers to the ad's active survey.
// Resubmitting a question overwrites the previous answer; within one batch the last answer wins.
func (f *ParticipationFlowImpl) RecordSurveyAnswers(ctx context.Context, req *dto.SubmitSurveyAnswersRequest, metadata *ClientMetadata) (_ *dto.SubmitSurveyAnswersResponse, err error) {
	defer func() { observe("record_survey_answers", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if len(req.Answers) == 0 {
		return nil, NewBusinessError("NO_ANSWERS", "At least one answer is required", ErrNoAnswers)
	}
	for _, a := range req.Answers {
		if err := validateAnswer(a); err != nil {
			return nil, err
		}
	}

	ad, err := f.ads.participationTarget(ctx, req.AdID, models.ParticipationSurvey)
	if err != nil {
		return nil, err
	}

	survey, err := f.surveyRepo.ActiveByAd(ctx, ad.ID)
	if err != nil {
		return nil, NewBusinessError("RECORD_SURVEY_ANSWERS_FAILED", "Failed to load survey", err)
	}
	if survey == nil {
		return nil, NewBusinessError("SURVEY_NOT_FOUND", "This ad has no active survey", ErrSurveyNotFound)
	}

	questions := make(map[uint]struct{}, len(survey.Questions))
	for _, q := range survey.Questions {
		questions[q.ID] = struct{}{}
	}

	byQuestion := make(map[uint]*models.SurveyAnswer, len(req.Answers))
	order := make([]uint, 0, len(req.Answers))
	for _, a := range req.Answers {
		if _, ok := questions[a.QuestionID]; !ok {
			return nil, NewBusinessErrorf("INVALID_QUESTION", "Question %d does not belong to this survey", ErrInvalidQuestion, a.QuestionID)
		}
		if _, seen := byQuestion[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		byQuestion[a.QuestionID] = toSurveyAnswer(survey.ID, req.UserID, a)
	}

	answers := make([]*models.SurveyAnswer, 0, len(order))
	for _, qid := range order {
		answers = append(answers, byQuestion[qid])
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.answerRepo.Upsert(txCtx, answers)
	})
	if err != nil {
		return nil, NewBusinessError("RECORD_SURVEY_ANSWERS_FAILED", "Failed to record survey answers", err)
	}

	stored, err := f.answerRepo.ByFilter(ctx, models.SurveyAnswerFilter{SurveyID: &survey.ID, UserID: &req.UserID}, "question_id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RECORD_SURVEY_ANSWERS_FAILED", "Failed to load recorded answers", err)
	}

	items := make([]dto.SurveyAnswerItem, 0, len(answers))
	for _, a := range stored {
		if _, ok := byQuestion[a.QuestionID]; ok {
			items = append(items, ToSurveyAnswerItem(*a))
		}
	}

	exposure := f.exposures.record(ctx, ad.ID, req.UserID, models.ParticipationSurvey)

	return &dto.SubmitSurveyAnswersResponse{
		Message:     "Survey answers recorded",
		SurveyID:    survey.ID,
		Answers:     items,
		SideEffects: []dto.SideEffect{exposure},
	}, nil
}

func validateAnswer(a dto.SurveyAnswerInput) error {
	if a.QuestionID == 0 {
		return NewBusinessError("INVALID_ANSWER", "Each answer must reference a question", ErrInvalidAnswer)
	}
	hasText := a.AnswerText != nil && strings.TrimSpace(*a.AnswerText) != ""
	if !hasText && len(a.AnswerOptions) == 0 {
		return NewBusinessErrorf("INVALID_ANSWER", "Answer to question %d needs text or options", ErrInvalidAnswer, a.QuestionID)
	}
	if hasText && utf8.RuneCountInString(strings.TrimSpace(*a.AnswerText)) > utils.MaxAnswerTextLength {
		return NewBusinessErrorf("INVALID_ANSWER", "Answer text must be at most %d characters", ErrInvalidAnswer, utils.MaxAnswerTextLength)
	}
	return nil
}

func toSurveyAnswer(surveyID, userID uint, a dto.SurveyAnswerInput) *models.SurveyAnswer {
	answer := &models.SurveyAnswer{
		SurveyID:   surveyID,
		QuestionID: a.QuestionID,
		UserID:     userID,
	}
	if a.AnswerText != nil {
		if text := strings.TrimSpace(*a.AnswerText); text != "" {
			answer.AnswerText = &text
		}
	}
	if len(a.AnswerOptions) > 0 {
		if bs, err := json.Marshal(a.AnswerOptions); err == nil {
			answer.AnswerOptions = datatypes.JSON(bs)
		}
	}
	return answer
}
