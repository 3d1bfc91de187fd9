package repository

import (
	"context"
	"time"

	"github.com/usbest/usbest-backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AdRepository defines operations for ads
type AdRepository interface {
	Repository[models.Ad, models.AdFilter]
	ListActive(ctx context.Context, before *time.Time, limit int) ([]*models.Ad, error)
}

// CommentRepository defines operations for comments
type CommentRepository interface {
	Repository[models.Comment, models.CommentFilter]
	ListPublicByAd(ctx context.Context, adID uint) ([]*models.Comment, error)
	// UpdateStatusIf moves a comment to status only while it is in one of from; returns rows affected.
	UpdateStatusIf(ctx context.Context, id uint, from []models.ParticipationStatus, status models.ParticipationStatus) (int64, error)
	SetPinned(ctx context.Context, id uint, pinned bool) error
}

// UGCRepository defines operations for UGC items
type UGCRepository interface {
	Repository[models.UGCItem, models.UGCFilter]
	ListPublicByAd(ctx context.Context, adID uint) ([]*models.UGCItem, error)
	UpdateStatusIf(ctx context.Context, id uint, from []models.ParticipationStatus, status models.ParticipationStatus) (int64, error)
}

// SurveyRepository defines operations for surveys and their questions
type SurveyRepository interface {
	Repository[models.Survey, models.SurveyFilter]
	ActiveByAd(ctx context.Context, adID uint) (*models.Survey, error)
}

// SurveyAnswerRepository defines operations for survey answers
type SurveyAnswerRepository interface {
	Repository[models.SurveyAnswer, models.SurveyAnswerFilter]
	Upsert(ctx context.Context, answers []*models.SurveyAnswer) error
}

// TesterCampaignRepository defines operations for tester campaigns
type TesterCampaignRepository interface {
	Repository[models.TesterCampaign, models.TesterCampaignFilter]
	OpenByAd(ctx context.Context, adID uint, now time.Time) (*models.TesterCampaign, error)
	// LockByID reads the campaign row with FOR UPDATE; must run inside a transaction.
	LockByID(ctx context.Context, id uint) (*models.TesterCampaign, error)
	// CloseExpired closes open campaigns whose deadline is at or before now; returns rows affected.
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// TesterApplicantRepository defines operations for tester applicants
type TesterApplicantRepository interface {
	Repository[models.TesterApplicant, models.TesterApplicantFilter]
	ByCampaignAndUser(ctx context.Context, campaignID, userID uint) (*models.TesterApplicant, error)
	LatestByUserAndStatus(ctx context.Context, userID uint, status models.ApplicantStatus) (*models.TesterApplicant, error)
	UpdateStatusIf(ctx context.Context, id uint, from, status models.ApplicantStatus) (int64, error)
}

// TesterReportRepository defines operations for tester reports
type TesterReportRepository interface {
	Repository[models.TesterReport, models.TesterReportFilter]
	ByApplicantID(ctx context.Context, applicantID uint) (*models.TesterReport, error)
}

// RewardRepository defines operations for rewards
type RewardRepository interface {
	Repository[models.Reward, models.RewardFilter]
	BySource(ctx context.Context, sourceType models.RewardSourceType, sourceID uint) (*models.Reward, error)
}

// AdExposureRepository defines operations for ad exposures
type AdExposureRepository interface {
	Repository[models.AdExposure, models.AdExposureFilter]
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAdvertiser(ctx context.Context, advertiserID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByTarget(ctx context.Context, targetType string, targetID uint) ([]*models.AuditLog, error)
}
