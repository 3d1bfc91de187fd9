package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"go.uber.org/zap"
)

// ParticipationHandlerInterface defines the contract for participation handlers
type ParticipationHandlerInterface interface {
	CreateComment(c fiber.Ctx) error
	CreateUGC(c fiber.Ctx) error
	InitUGCUpload(c fiber.Ctx) error
	SubmitSurveyAnswers(c fiber.Ctx) error
}

// ParticipationHandler handles comment, UGC and survey submissions
type ParticipationHandler struct {
	baseHandler
	flow      businessflow.ParticipationFlow
	mediaFlow businessflow.MediaFlow
}

// NewParticipationHandler creates a new participation handler
func NewParticipationHandler(flow businessflow.ParticipationFlow, mediaFlow businessflow.MediaFlow, logger *zap.Logger) *ParticipationHandler {
	return &ParticipationHandler{
		baseHandler: newBaseHandler(logger),
		flow:        flow,
		mediaFlow:   mediaFlow,
	}
}

// CreateComment records a comment on an ad
// @Summary Comment on an ad
// @Tags Participation
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCommentResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Ad not found or comments disabled"
// @Router /api/v1/ads/{id}/comments [post]
func (h *ParticipationHandler) CreateComment(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.CreateCommentRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.AdID = adID
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/comments")
	defer cancel()

	result, err := h.flow.RecordComment(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to record comment", "RECORD_COMMENT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// CreateUGC records a UGC submission for an ad
// @Summary Submit UGC
// @Tags Participation
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.CreateUGCRequest true "UGC"
// @Success 201 {object} dto.APIResponse{data=dto.CreateUGCResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Ad not found or UGC disabled"
// @Router /api/v1/ads/{id}/ugc [post]
func (h *ParticipationHandler) CreateUGC(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.CreateUGCRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.AdID = adID
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/ugc")
	defer cancel()

	result, err := h.flow.RecordUGC(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to record UGC", "RECORD_UGC_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// InitUGCUpload returns a signed upload URL for a UGC file
// @Summary Start a UGC upload
// @Tags Participation
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.InitUGCUploadRequest true "File to upload"
// @Success 200 {object} dto.APIResponse{data=dto.InitUGCUploadResponse}
// @Failure 400 {object} dto.APIResponse "Unsupported file type"
// @Failure 404 {object} dto.APIResponse "Ad not found or UGC disabled"
// @Router /api/v1/ads/{id}/ugc/init [post]
func (h *ParticipationHandler) InitUGCUpload(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.InitUGCUploadRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.AdID = adID
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/ugc/init")
	defer cancel()

	result, err := h.mediaFlow.InitUGCUpload(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to start upload", "INIT_UPLOAD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// SubmitSurveyAnswers stores a batch of answers to the ad's active survey
// @Summary Answer the ad survey
// @Tags Participation
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.SubmitSurveyAnswersRequest true "Answers"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitSurveyAnswersResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Ad or survey not found"
// @Router /api/v1/ads/{id}/survey [post]
func (h *ParticipationHandler) SubmitSurveyAnswers(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.SubmitSurveyAnswersRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.AdID = adID
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/survey")
	defer cancel()

	result, err := h.flow.RecordSurveyAnswers(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to record survey answers", "RECORD_SURVEY_ANSWERS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}
