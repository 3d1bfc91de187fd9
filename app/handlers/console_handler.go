package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"go.uber.org/zap"
)

// ConsoleHandlerInterface defines the contract for advertiser console handlers
type ConsoleHandlerInterface interface {
	GetConsole(c fiber.Ctx) error
	ListCampaignApplicants(c fiber.Ctx) error
}

// ConsoleHandler serves the advertiser's moderation overview
type ConsoleHandler struct {
	baseHandler
	flow businessflow.AdvertiserConsoleFlow
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(flow businessflow.AdvertiserConsoleFlow, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		baseHandler: newBaseHandler(logger),
		flow:        flow,
	}
}

// GetConsole returns the advertiser's ads, recent participation in every status and tester campaigns
// @Summary Advertiser console
// @Tags Advertiser
// @Produce json
// @Param ad_id query int false "Limit the console to one ad"
// @Success 200 {object} dto.APIResponse{data=dto.AdvertiserConsoleResponse}
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/advertiser/console [get]
func (h *ConsoleHandler) GetConsole(c fiber.Ctx) error {
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	var req dto.AdvertiserConsoleRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.AdvertiserID = advertiserID

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/console")
	defer cancel()

	result, err := h.flow.GetConsole(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to load console", "CONSOLE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListCampaignApplicants lists a campaign's applicants for selection
// @Summary List campaign applicants
// @Tags Advertiser
// @Produce json
// @Param id path int true "Campaign ID"
// @Param status query string false "pending, selected, rejected or completed"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignApplicantsResponse}
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/advertiser/tester/campaigns/{id}/applicants [get]
func (h *ConsoleHandler) ListCampaignApplicants(c fiber.Ctx) error {
	campaignID, ok, err := h.pathID(c, "id", "INVALID_CAMPAIGN_ID")
	if !ok {
		return err
	}
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	var req dto.ListCampaignApplicantsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.AdvertiserID = advertiserID
	req.CampaignID = campaignID

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/tester/campaigns/:id/applicants")
	defer cancel()

	result, err := h.flow.ListCampaignApplicants(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list applicants", "LIST_APPLICANTS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
