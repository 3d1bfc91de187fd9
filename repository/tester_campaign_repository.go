package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TesterCampaignRepositoryImpl implements TesterCampaignRepository interface
type TesterCampaignRepositoryImpl struct {
	*BaseRepository[models.TesterCampaign, models.TesterCampaignFilter]
}

// NewTesterCampaignRepository creates a new tester campaign repository
func NewTesterCampaignRepository(db *gorm.DB) TesterCampaignRepository {
	return &TesterCampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TesterCampaign, models.TesterCampaignFilter](db),
	}
}

// OpenByAd returns the newest open campaign of an ad whose deadline has not passed
func (r *TesterCampaignRepositoryImpl) OpenByAd(ctx context.Context, adID uint, now time.Time) (*models.TesterCampaign, error) {
	var campaign models.TesterCampaign
	err := r.getDB(ctx).
		Where("ad_id = ? AND status = ?", adID, models.TesterCampaignStatusOpen).
		Where("deadline IS NULL OR deadline > ?", now).
		Order("created_at DESC, id DESC").
		Take(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open campaign: %w", err)
	}
	return &campaign, nil
}

// LockByID reads a campaign holding a row lock until the surrounding transaction ends
func (r *TesterCampaignRepositoryImpl) LockByID(ctx context.Context, id uint) (*models.TesterCampaign, error) {
	var campaign models.TesterCampaign
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock campaign %d: %w", id, err)
	}
	return &campaign, nil
}

// CloseExpired closes every open campaign whose deadline has passed
func (r *TesterCampaignRepositoryImpl) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.getDB(ctx).Model(&models.TesterCampaign{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", models.TesterCampaignStatusOpen, now).
		Updates(map[string]any{
			"status":     models.TesterCampaignStatusClosed,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to close expired campaigns: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TesterCampaignRepositoryImpl) applyFilter(query *gorm.DB, filter models.TesterCampaignFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if len(filter.AdIDs) > 0 {
		query = query.Where("ad_id IN ?", filter.AdIDs)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves campaigns based on filter criteria
func (r *TesterCampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.TesterCampaignFilter, orderBy string, limit, offset int) ([]*models.TesterCampaign, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterCampaign{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.TesterCampaign
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of campaigns matching filter
func (r *TesterCampaignRepositoryImpl) Count(ctx context.Context, filter models.TesterCampaignFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterCampaign{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any campaign matches the filter
func (r *TesterCampaignRepositoryImpl) Exists(ctx context.Context, filter models.TesterCampaignFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
