package businessflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/config"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdoptionFlow promotes comments and UGC to adopted and issues their rewards
type AdoptionFlow interface {
	Adopt(ctx context.Context, req *dto.AdoptRequest, metadata *ClientMetadata) (*dto.AdoptResponse, error)
	Pin(ctx context.Context, req *dto.PinCommentRequest, metadata *ClientMetadata) (*dto.PinCommentResponse, error)
	IssueMissingReward(ctx context.Context, req *dto.IssueMissingRewardRequest, metadata *ClientMetadata) (*dto.IssueMissingRewardResponse, error)
	ListUserRewards(ctx context.Context, userID uint) (*dto.ListRewardsResponse, error)
}

// AdoptionFlowImpl implements AdoptionFlow
type AdoptionFlowImpl struct {
	ads         adLoader
	audits      auditRecorder
	commentRepo repository.CommentRepository
	ugcRepo     repository.UGCRepository
	rewardRepo  repository.RewardRepository
	rewardCfg   config.RewardConfig
	db          *gorm.DB
	logger      *zap.Logger
	now         func() time.Time
}

// NewAdoptionFlow creates a new adoption flow; adCache may be nil
func NewAdoptionFlow(
	adRepo repository.AdRepository,
	commentRepo repository.CommentRepository,
	ugcRepo repository.UGCRepository,
	rewardRepo repository.RewardRepository,
	auditRepo repository.AuditLogRepository,
	adCache AdCache,
	rewardCfg config.RewardConfig,
	db *gorm.DB,
	logger *zap.Logger,
) AdoptionFlow {
	return &AdoptionFlowImpl{
		ads:         adLoader{repo: adRepo, cache: adCache},
		audits:      auditRecorder{repo: auditRepo, logger: logger},
		commentRepo: commentRepo,
		ugcRepo:     ugcRepo,
		rewardRepo:  rewardRepo,
		rewardCfg:   rewardCfg,
		db:          db,
		logger:      logger,
		now:         utils.UTCNow,
	}
}

// adoptionSource is the part of a comment or UGC item adoption works with
type adoptionSource struct {
	kind    models.RewardSourceType
	id      uint
	adID    uint
	userID  uint
	status  models.ParticipationStatus
	comment *models.Comment
	ugc     *models.UGCItem
}

func (s *adoptionSource) markAdopted() {
	s.status = models.ParticipationStatusAdopted
	if s.comment != nil {
		s.comment.Status = models.ParticipationStatusAdopted
	}
	if s.ugc != nil {
		s.ugc.Status = models.ParticipationStatusAdopted
	}
}

func (f *AdoptionFlowImpl) loadSource(ctx context.Context, sourceType string, sourceID uint) (*adoptionSource, error) {
	switch models.RewardSourceType(sourceType) {
	case models.RewardSourceComment:
		comment, err := f.commentRepo.ByID(ctx, sourceID)
		if err != nil {
			return nil, NewBusinessError("ADOPTION_FAILED", "Failed to load comment", err)
		}
		if comment == nil {
			return nil, NewBusinessError("COMMENT_NOT_FOUND", "Comment not found", ErrCommentNotFound)
		}
		return &adoptionSource{
			kind:    models.RewardSourceComment,
			id:      comment.ID,
			adID:    comment.AdID,
			userID:  comment.UserID,
			status:  comment.Status,
			comment: comment,
		}, nil
	case models.RewardSourceUGC:
		item, err := f.ugcRepo.ByID(ctx, sourceID)
		if err != nil {
			return nil, NewBusinessError("ADOPTION_FAILED", "Failed to load UGC", err)
		}
		if item == nil {
			return nil, NewBusinessError("UGC_NOT_FOUND", "UGC not found", ErrUGCNotFound)
		}
		return &adoptionSource{
			kind:   models.RewardSourceUGC,
			id:     item.ID,
			adID:   item.AdID,
			userID: item.UserID,
			status: item.Status,
			ugc:    item,
		}, nil
	default:
		return nil, NewBusinessError("INVALID_SOURCE_TYPE", "Source type must be comment or ugc", ErrInvalidSourceType)
	}
}

// adoptionConflict explains a conditional update that matched no row from the item's current status
func (f *AdoptionFlowImpl) adoptionConflict(ctx context.Context, source *adoptionSource) error {
	current, err := f.loadSource(ctx, string(source.kind), source.id)
	if err != nil {
		return err
	}
	if current.status == models.ParticipationStatusAdopted {
		return NewBusinessError("ALREADY_ADOPTED", "This item has already been adopted", ErrAlreadyAdopted)
	}
	return NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot adopt an item in status %s", ErrInvalidStatusTransition, current.status)
}

// Adopt moves a comment or UGC item to adopted and issues its reward.
// Only one concurrent caller can win the conditional update; reward issuance is best-effort.
func (f *AdoptionFlowImpl) Adopt(ctx context.Context, req *dto.AdoptRequest, metadata *ClientMetadata) (_ *dto.AdoptResponse, err error) {
	defer func() { observe("adopt", err) }()

	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	source, err := f.loadSource(ctx, req.SourceType, req.SourceID)
	if err != nil {
		return nil, err
	}
	if _, err := f.ads.ownedAd(ctx, source.adID, req.AdvertiserID); err != nil {
		return nil, err
	}

	switch {
	case source.status == models.ParticipationStatusAdopted:
		return nil, NewBusinessError("ALREADY_ADOPTED", "This item has already been adopted", ErrAlreadyAdopted)
	case !source.status.Adoptable():
		return nil, NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot adopt an item in status %s", ErrInvalidStatusTransition, source.status)
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var (
			affected int64
			err      error
		)
		if source.kind == models.RewardSourceComment {
			affected, err = f.commentRepo.UpdateStatusIf(txCtx, source.id, models.AdoptableStatuses(), models.ParticipationStatusAdopted)
		} else {
			affected, err = f.ugcRepo.UpdateStatusIf(txCtx, source.id, models.AdoptableStatuses(), models.ParticipationStatusAdopted)
		}
		if err != nil {
			return NewBusinessError("ADOPTION_FAILED", "Failed to adopt item", err)
		}
		if affected == 0 {
			return f.adoptionConflict(txCtx, source)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	source.markAdopted()

	sideEffects := make([]dto.SideEffect, 0, 2)

	var rewardItem *dto.RewardItem
	reward, _, rewardErr := f.issueReward(ctx, source)
	if rewardErr != nil {
		f.logger.Warn("failed to issue adoption reward",
			zap.String("source_type", string(source.kind)),
			zap.Uint("source_id", source.id),
			zap.Uint("ad_id", source.adID),
			zap.Error(rewardErr),
		)
	} else {
		item := ToRewardItem(*reward)
		rewardItem = &item
	}
	sideEffects = append(sideEffects, sideEffect(dto.SideEffectReward, rewardErr))

	action := models.AuditActionCommentAdopted
	if source.kind == models.RewardSourceUGC {
		action = models.AuditActionUGCAdopted
	}
	details := map[string]any{"ad_id": source.adID, "user_id": source.userID, "reward_issued": rewardErr == nil}
	sideEffects = append(sideEffects, f.audits.record(ctx, req.AdvertiserID, action, string(source.kind), source.id,
		fmt.Sprintf("%s %d adopted", source.kind, source.id), details, metadata))

	resp := &dto.AdoptResponse{
		Message:     "Adopted",
		SourceType:  string(source.kind),
		Reward:      rewardItem,
		SideEffects: sideEffects,
	}
	if source.comment != nil {
		item := ToCommentItem(*source.comment)
		resp.Comment = &item
	}
	if source.ugc != nil {
		item := ToUGCItem(*source.ugc)
		resp.UGC = &item
	}
	return resp, nil
}

// issueReward creates the reward of an adopted source. An existing reward for the
// same source is returned with created=false.
func (f *AdoptionFlowImpl) issueReward(ctx context.Context, source *adoptionSource) (*models.Reward, bool, error) {
	value := f.rewardCfg.CommentValue
	if source.kind == models.RewardSourceUGC {
		value = f.rewardCfg.UGCValue
	}
	rewardType := f.rewardCfg.Type
	if rewardType == "" {
		rewardType = models.RewardTypeCoupon
	}

	reward := &models.Reward{
		AdID:       source.adID,
		UserID:     source.userID,
		Type:       rewardType,
		Value:      value,
		SourceType: source.kind,
		SourceID:   source.id,
		Status:     models.RewardStatusPending,
	}
	if f.rewardCfg.CouponCodeBytes > 0 && rewardType == models.RewardTypeCoupon {
		code, err := generateCouponCode(f.rewardCfg.CouponCodeBytes)
		if err != nil {
			return nil, false, err
		}
		reward.CouponCode = &code
	}
	if f.rewardCfg.Validity > 0 {
		reward.ExpiresAt = utils.ToPtr(f.now().Add(f.rewardCfg.Validity))
	}

	if err := f.rewardRepo.Save(ctx, reward); err != nil {
		if !repository.IsDuplicateKey(err) {
			return nil, false, err
		}
		existing, lookupErr := f.rewardRepo.BySource(ctx, source.kind, source.id)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		if existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return reward, true, nil
}

func generateCouponCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate coupon code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Pin pins a comment on its ad page; pinning a pinned comment is a no-op
func (f *AdoptionFlowImpl) Pin(ctx context.Context, req *dto.PinCommentRequest, metadata *ClientMetadata) (_ *dto.PinCommentResponse, err error) {
	defer func() { observe("pin", err) }()

	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	comment, err := f.commentRepo.ByID(ctx, req.CommentID)
	if err != nil {
		return nil, NewBusinessError("PIN_FAILED", "Failed to load comment", err)
	}
	if comment == nil {
		return nil, NewBusinessError("COMMENT_NOT_FOUND", "Comment not found", ErrCommentNotFound)
	}
	if _, err := f.ads.ownedAd(ctx, comment.AdID, req.AdvertiserID); err != nil {
		return nil, err
	}

	sideEffects := []dto.SideEffect{}
	if !comment.IsPinned {
		if err := f.commentRepo.SetPinned(ctx, comment.ID, true); err != nil {
			return nil, NewBusinessError("PIN_FAILED", "Failed to pin comment", err)
		}
		comment.IsPinned = true
		sideEffects = append(sideEffects, f.audits.record(ctx, req.AdvertiserID, models.AuditActionCommentPinned, string(models.RewardSourceComment), comment.ID,
			fmt.Sprintf("comment %d pinned", comment.ID), map[string]any{"ad_id": comment.AdID}, metadata))
	}

	return &dto.PinCommentResponse{
		Message:     "Comment pinned",
		Comment:     ToCommentItem(*comment),
		SideEffects: sideEffects,
	}, nil
}

// IssueMissingReward creates the reward an adopted source should have received
func (f *AdoptionFlowImpl) IssueMissingReward(ctx context.Context, req *dto.IssueMissingRewardRequest, metadata *ClientMetadata) (_ *dto.IssueMissingRewardResponse, err error) {
	defer func() { observe("issue_missing_reward", err) }()

	if err := requireAdvertiser(req.AdvertiserID); err != nil {
		return nil, err
	}

	source, err := f.loadSource(ctx, req.SourceType, req.SourceID)
	if err != nil {
		return nil, err
	}
	if _, err := f.ads.ownedAd(ctx, source.adID, req.AdvertiserID); err != nil {
		return nil, err
	}
	if source.status != models.ParticipationStatusAdopted {
		return nil, NewBusinessError("SOURCE_NOT_ADOPTED", "Only adopted items can receive a reward", ErrSourceNotAdopted)
	}

	existing, err := f.rewardRepo.BySource(ctx, source.kind, source.id)
	if err != nil {
		return nil, NewBusinessError("ISSUE_REWARD_FAILED", "Failed to load reward", err)
	}
	if existing != nil {
		return &dto.IssueMissingRewardResponse{
			Message: "Reward already issued",
			Reward:  ToRewardItem(*existing),
			Created: false,
		}, nil
	}

	reward, created, err := f.issueReward(ctx, source)
	if err != nil {
		return nil, NewBusinessError("ISSUE_REWARD_FAILED", "Failed to issue reward", err)
	}
	if created {
		f.audits.record(ctx, req.AdvertiserID, models.AuditActionRewardReissued, string(source.kind), source.id,
			fmt.Sprintf("reward %d issued for %s %d", reward.ID, source.kind, source.id),
			map[string]any{"reward_id": reward.ID, "user_id": source.userID}, metadata)
	}

	message := "Reward issued"
	if !created {
		message = "Reward already issued"
	}
	return &dto.IssueMissingRewardResponse{
		Message: message,
		Reward:  ToRewardItem(*reward),
		Created: created,
	}, nil
}

// ListUserRewards returns the user's rewards, newest first
func (f *AdoptionFlowImpl) ListUserRewards(ctx context.Context, userID uint) (*dto.ListRewardsResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := f.rewardRepo.ByFilter(ctx, models.RewardFilter{UserID: &userID}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_REWARDS_FAILED", "Failed to list rewards", err)
	}

	items := make([]dto.RewardItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToRewardItem(*r))
	}
	return &dto.ListRewardsResponse{
		Message: "Rewards retrieved",
		Rewards: items,
	}, nil
}
