package businessflow

import (
	"context"
	"encoding/json"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// adLoader reads ads through the optional cache; the cache only serves read endpoints
type adLoader struct {
	repo  repository.AdRepository
	cache AdCache
}

// load returns the ad or nil when it does not exist
func (l adLoader) load(ctx context.Context, adID uint) (*models.Ad, error) {
	if adID == 0 {
		return nil, nil
	}
	if l.cache != nil {
		if ad, ok := l.cache.Get(ctx, adID); ok {
			return ad, nil
		}
	}

	return l.fresh(ctx, adID)
}

// fresh reads the ad from the database and refreshes the cached copy
func (l adLoader) fresh(ctx context.Context, adID uint) (*models.Ad, error) {
	if adID == 0 {
		return nil, nil
	}
	ad, err := l.repo.ByID(ctx, adID)
	if err != nil {
		return nil, NewBusinessError("AD_LOOKUP_FAILED", "Failed to load ad", err)
	}
	if ad != nil && l.cache != nil {
		l.cache.Set(ctx, ad)
	}
	return ad, nil
}

// participationTarget returns the ad when it accepts participation of the given kind.
// Capability flags are always read from the database, never from the cache.
func (l adLoader) participationTarget(ctx context.Context, adID uint, kind models.ParticipationKind) (*models.Ad, error) {
	ad, err := l.fresh(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil || !ad.Accepts(kind) {
		return nil, NewBusinessError("PARTICIPATION_UNAVAILABLE", "This ad does not accept this kind of participation", ErrParticipationUnavailable)
	}
	return ad, nil
}

// ownedAd returns the ad when it belongs to the advertiser
func (l adLoader) ownedAd(ctx context.Context, adID, advertiserID uint) (*models.Ad, error) {
	ad, err := l.load(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, NewBusinessError("AD_NOT_FOUND", "Ad not found", ErrAdNotFound)
	}
	if ad.AdvertiserID != advertiserID {
		return nil, NewBusinessError("NOT_AD_OWNER", "You can only moderate your own ads", ErrNotAdOwner)
	}
	return ad, nil
}

// exposureRecorder appends exposure rows as a best-effort step
type exposureRecorder struct {
	repo   repository.AdExposureRepository
	logger *zap.Logger
}

func (r exposureRecorder) record(ctx context.Context, adID, userID uint, source models.ParticipationKind) dto.SideEffect {
	exposure := &models.AdExposure{
		AdID:   adID,
		UserID: &userID,
		Source: source,
	}
	err := r.repo.Save(ctx, exposure)
	if err != nil {
		r.logger.Warn("failed to record ad exposure",
			zap.Uint("ad_id", adID),
			zap.Uint("user_id", userID),
			zap.String("source", string(source)),
			zap.Error(err),
		)
	}
	return sideEffect(dto.SideEffectExposure, err)
}

// auditRecorder writes the moderation trail as a best-effort step
type auditRecorder struct {
	repo   repository.AuditLogRepository
	logger *zap.Logger
}

func (r auditRecorder) record(ctx context.Context, advertiserID uint, action, targetType string, targetID uint, description string, details map[string]any, metadata *ClientMetadata) dto.SideEffect {
	entry := &models.AuditLog{
		AdvertiserID: &advertiserID,
		Action:       action,
		TargetType:   targetType,
		TargetID:     targetID,
		Description:  &description,
		IPAddress:    metadata.ipAddress(),
		UserAgent:    metadata.userAgent(),
		RequestID:    metadata.requestID(),
		Success:      utils.ToPtr(true),
	}
	if len(details) > 0 {
		if bs, err := json.Marshal(details); err == nil {
			entry.Metadata = datatypes.JSON(bs)
		}
	}

	err := r.repo.Save(ctx, entry)
	if err != nil {
		r.logger.Warn("failed to write audit log",
			zap.String("action", action),
			zap.Uint("target_id", targetID),
			zap.Error(err),
		)
	}
	return sideEffect(dto.SideEffectAudit, err)
}

func requireUser(userID uint) error {
	if userID == 0 {
		return NewBusinessError("USER_REQUIRED", "Authentication is required", ErrUserRequired)
	}
	return nil
}

func requireAdvertiser(advertiserID uint) error {
	if advertiserID == 0 {
		return NewBusinessError("ADVERTISER_REQUIRED", "Advertiser authentication is required", ErrAdvertiserRequired)
	}
	return nil
}
