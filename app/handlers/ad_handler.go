package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"go.uber.org/zap"
)

// AdHandlerInterface defines the contract for the ad read endpoints
type AdHandlerInterface interface {
	ListAds(c fiber.Ctx) error
	GetAd(c fiber.Ctx) error
	ListComments(c fiber.Ctx) error
	ListUGC(c fiber.Ctx) error
	GetSurvey(c fiber.Ctx) error
	MyParticipation(c fiber.Ctx) error
}

// AdHandler serves the public feed and per-ad reads
type AdHandler struct {
	baseHandler
	flow businessflow.AdFlow
}

// NewAdHandler creates a new ad handler
func NewAdHandler(flow businessflow.AdFlow, logger *zap.Logger) *AdHandler {
	return &AdHandler{
		baseHandler: newBaseHandler(logger),
		flow:        flow,
	}
}

// ListAds pages through active ads newest first
// @Summary List ads
// @Tags Ads
// @Produce json
// @Param cursor query string false "next_cursor of the previous page"
// @Param limit query int false "Page size (1-100, default 20)"
// @Success 200 {object} dto.APIResponse{data=dto.ListAdsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid cursor or limit"
// @Router /api/v1/ads [get]
func (h *AdHandler) ListAds(c fiber.Ctx) error {
	var req dto.ListAdsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads")
	defer cancel()

	result, err := h.flow.ListAds(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list ads", "LIST_ADS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetAd returns one ad with its participation capabilities
// @Summary Get ad
// @Tags Ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetAdResponse}
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/ads/{id} [get]
func (h *AdHandler) GetAd(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id")
	defer cancel()

	result, err := h.flow.GetAd(ctx, adID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to get ad", "GET_AD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListComments returns the visible comments of an ad, pinned first
// @Summary List comments
// @Tags Ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListCommentsResponse}
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/ads/{id}/comments [get]
func (h *AdHandler) ListComments(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/comments")
	defer cancel()

	result, err := h.flow.ListComments(ctx, adID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list comments", "LIST_COMMENTS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListUGC returns the visible UGC of an ad
// @Summary List UGC
// @Tags Ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListUGCResponse}
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/ads/{id}/ugc [get]
func (h *AdHandler) ListUGC(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/ugc")
	defer cancel()

	result, err := h.flow.ListUGC(ctx, adID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list UGC", "LIST_UGC_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetSurvey returns the active survey of an ad with its questions
// @Summary Get survey
// @Tags Ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetSurveyResponse}
// @Failure 404 {object} dto.APIResponse "No active survey"
// @Router /api/v1/ads/{id}/survey [get]
func (h *AdHandler) GetSurvey(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/survey")
	defer cancel()

	result, err := h.flow.GetSurvey(ctx, adID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to get survey", "GET_SURVEY_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// MyParticipation gathers the authenticated user's comments, UGC, answers and applications
// @Summary My participation
// @Tags Participation
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MyParticipationResponse}
// @Router /api/v1/me/participation [get]
func (h *AdHandler) MyParticipation(c fiber.Ctx) error {
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/me/participation")
	defer cancel()

	result, err := h.flow.GetMyParticipation(ctx, userID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to get participation", "GET_PARTICIPATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
