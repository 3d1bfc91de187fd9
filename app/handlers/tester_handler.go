package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"go.uber.org/zap"
)

// TesterHandlerInterface defines the contract for tester campaign handlers
type TesterHandlerInterface interface {
	GetOpenCampaign(c fiber.Ctx) error
	Apply(c fiber.Ctx) error
	SubmitReport(c fiber.Ctx) error
	ListMyApplications(c fiber.Ctx) error
	SelectApplicant(c fiber.Ctx) error
	ExportApplicants(c fiber.Ctx) error
}

// TesterHandler handles tester applications, reports and advertiser selection
type TesterHandler struct {
	baseHandler
	flow businessflow.TesterFlow
}

// NewTesterHandler creates a new tester handler
func NewTesterHandler(flow businessflow.TesterFlow, logger *zap.Logger) *TesterHandler {
	return &TesterHandler{
		baseHandler: newBaseHandler(logger),
		flow:        flow,
	}
}

// GetOpenCampaign returns the open tester campaign of an ad with its remaining spots
// @Summary Get tester campaign
// @Tags Tester
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetTesterCampaignResponse}
// @Failure 404 {object} dto.APIResponse "No open campaign"
// @Router /api/v1/ads/{id}/tester [get]
func (h *TesterHandler) GetOpenCampaign(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/tester")
	defer cancel()

	result, err := h.flow.GetOpenCampaign(ctx, adID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to get tester campaign", "GET_TESTER_CAMPAIGN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Apply applies the user to the ad's open tester campaign
// @Summary Apply as tester
// @Tags Tester
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.ApplyTesterRequest false "Application data"
// @Success 201 {object} dto.APIResponse{data=dto.ApplyTesterResponse}
// @Failure 404 {object} dto.APIResponse "No open campaign"
// @Failure 409 {object} dto.APIResponse "Already applied or campaign full"
// @Router /api/v1/ads/{id}/tester [post]
func (h *TesterHandler) Apply(c fiber.Ctx) error {
	adID, ok, err := h.pathID(c, "id", "INVALID_AD_ID")
	if !ok {
		return err
	}
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.ApplyTesterRequest
	if len(c.Body()) > 0 {
		if ok, err := h.parseBody(c, &req); !ok {
			return err
		}
	}
	req.AdID = adID
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/ads/:id/tester")
	defer cancel()

	result, err := h.flow.Apply(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to apply", "APPLY_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// SubmitReport files a report for the user's selected application
// @Summary Submit tester report
// @Tags Tester
// @Accept json
// @Produce json
// @Param request body dto.SubmitTesterReportRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitTesterReportResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "No selected application"
// @Router /api/v1/tester/reports [post]
func (h *TesterHandler) SubmitReport(c fiber.Ctx) error {
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	var req dto.SubmitTesterReportRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.UserID = userID

	ctx, cancel := createRequestContext(c, "/api/v1/tester/reports")
	defer cancel()

	result, err := h.flow.SubmitReport(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to submit report", "SUBMIT_REPORT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListMyApplications lists the authenticated user's tester applications
// @Summary List my applications
// @Tags Tester
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListMyApplicationsResponse}
// @Router /api/v1/me/applications [get]
func (h *TesterHandler) ListMyApplications(c fiber.Ctx) error {
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/me/applications")
	defer cancel()

	result, err := h.flow.ListMyApplications(ctx, userID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list applications", "LIST_APPLICATIONS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// SelectApplicant moves a pending applicant to selected
// @Summary Select applicant
// @Tags Advertiser
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} dto.APIResponse{data=dto.SelectApplicantResponse}
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "Applicant not found"
// @Failure 409 {object} dto.APIResponse "Applicant is not pending"
// @Router /api/v1/advertiser/tester/applicants/{id}/select [post]
func (h *TesterHandler) SelectApplicant(c fiber.Ctx) error {
	applicantID, ok, err := h.pathID(c, "id", "INVALID_APPLICANT_ID")
	if !ok {
		return err
	}
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	req := dto.SelectApplicantRequest{AdvertiserID: advertiserID, ApplicantID: applicantID}

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/tester/applicants/:id/select")
	defer cancel()

	result, err := h.flow.SelectApplicant(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to select applicant", "SELECT_APPLICANT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportApplicants downloads the applicants of a campaign as an Excel workbook
// @Summary Export applicants
// @Tags Advertiser
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Campaign ID"
// @Success 200 {file} file
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/advertiser/tester/campaigns/{id}/applicants.xlsx [get]
func (h *TesterHandler) ExportApplicants(c fiber.Ctx) error {
	campaignID, ok, err := h.pathID(c, "id", "INVALID_CAMPAIGN_ID")
	if !ok {
		return err
	}
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	req := dto.ExportApplicantsRequest{AdvertiserID: advertiserID, CampaignID: campaignID}

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/tester/campaigns/:id/applicants.xlsx")
	defer cancel()

	result, err := h.flow.ExportApplicants(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to export applicants", "EXPORT_APPLICANTS_FAILED")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	return c.Status(fiber.StatusOK).Send(result.Content)
}
