package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/models"
	"go.uber.org/zap"
)

// AdoptionHandlerInterface defines the contract for adoption handlers
type AdoptionHandlerInterface interface {
	CommentAction(c fiber.Ctx) error
	AdoptUGC(c fiber.Ctx) error
	ReissueReward(c fiber.Ctx) error
	ListMyRewards(c fiber.Ctx) error
}

// AdoptionHandler handles advertiser moderation and user rewards
type AdoptionHandler struct {
	baseHandler
	flow businessflow.AdoptionFlow
}

// NewAdoptionHandler creates a new adoption handler
func NewAdoptionHandler(flow businessflow.AdoptionFlow, logger *zap.Logger) *AdoptionHandler {
	return &AdoptionHandler{
		baseHandler: newBaseHandler(logger),
		flow:        flow,
	}
}

// CommentAction adopts or pins a comment
// @Summary Moderate a comment
// @Tags Advertiser
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body dto.CommentActionRequest true "adopt or pin"
// @Success 200 {object} dto.APIResponse{data=dto.AdoptResponse}
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Failure 409 {object} dto.APIResponse "Already adopted"
// @Router /api/v1/advertiser/comments/{id}/actions [post]
func (h *AdoptionHandler) CommentAction(c fiber.Ctx) error {
	commentID, ok, err := h.pathID(c, "id", "INVALID_COMMENT_ID")
	if !ok {
		return err
	}
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	var req dto.CommentActionRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/comments/:id/actions")
	defer cancel()

	metadata := clientMetadata(c)
	switch req.Action {
	case "pin":
		result, err := h.flow.Pin(ctx, &dto.PinCommentRequest{CommentID: commentID, AdvertiserID: advertiserID}, metadata)
		if err != nil {
			return h.FlowErrorResponse(c, err, "Failed to pin comment", "PIN_COMMENT_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
	default:
		adopt := dto.AdoptRequest{SourceType: string(models.RewardSourceComment), SourceID: commentID, AdvertiserID: advertiserID}
		result, err := h.flow.Adopt(ctx, &adopt, metadata)
		if err != nil {
			return h.FlowErrorResponse(c, err, "Failed to adopt comment", "ADOPT_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
	}
}

// AdoptUGC adopts a UGC item
// @Summary Adopt UGC
// @Tags Advertiser
// @Produce json
// @Param id path int true "UGC ID"
// @Success 200 {object} dto.APIResponse{data=dto.AdoptResponse}
// @Failure 403 {object} dto.APIResponse "Ad belongs to another advertiser"
// @Failure 404 {object} dto.APIResponse "UGC not found"
// @Failure 409 {object} dto.APIResponse "Already adopted"
// @Router /api/v1/advertiser/ugc/{id}/adopt [post]
func (h *AdoptionHandler) AdoptUGC(c fiber.Ctx) error {
	ugcID, ok, err := h.pathID(c, "id", "INVALID_UGC_ID")
	if !ok {
		return err
	}
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	req := dto.AdoptRequest{SourceType: string(models.RewardSourceUGC), SourceID: ugcID, AdvertiserID: advertiserID}

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/ugc/:id/adopt")
	defer cancel()

	result, err := h.flow.Adopt(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to adopt UGC", "ADOPT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ReissueReward creates the missing reward of an adopted source
// @Summary Reissue a reward
// @Tags Advertiser
// @Accept json
// @Produce json
// @Param request body dto.IssueMissingRewardRequest true "Adopted source"
// @Success 200 {object} dto.APIResponse{data=dto.IssueMissingRewardResponse}
// @Failure 404 {object} dto.APIResponse "Source not found"
// @Failure 409 {object} dto.APIResponse "Source is not adopted"
// @Router /api/v1/advertiser/rewards/reissue [post]
func (h *AdoptionHandler) ReissueReward(c fiber.Ctx) error {
	advertiserID, ok, err := h.advertiserID(c)
	if !ok {
		return err
	}

	var req dto.IssueMissingRewardRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	req.AdvertiserID = advertiserID

	ctx, cancel := createRequestContext(c, "/api/v1/advertiser/rewards/reissue")
	defer cancel()

	result, err := h.flow.IssueMissingReward(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to issue reward", "ISSUE_REWARD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListMyRewards lists the authenticated user's rewards
// @Summary List my rewards
// @Tags Rewards
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListRewardsResponse}
// @Router /api/v1/me/rewards [get]
func (h *AdoptionHandler) ListMyRewards(c fiber.Ctx) error {
	userID, ok, err := h.userID(c)
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/me/rewards")
	defer cancel()

	result, err := h.flow.ListUserRewards(ctx, userID)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list rewards", "LIST_REWARDS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
