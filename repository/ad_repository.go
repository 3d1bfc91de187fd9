package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
)

// AdRepositoryImpl implements AdRepository interface
type AdRepositoryImpl struct {
	*BaseRepository[models.Ad, models.AdFilter]
}

// NewAdRepository creates a new ad repository
func NewAdRepository(db *gorm.DB) AdRepository {
	return &AdRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Ad, models.AdFilter](db),
	}
}

// ListActive returns active ads newest first, strictly older than before when given
func (r *AdRepositoryImpl) ListActive(ctx context.Context, before *time.Time, limit int) ([]*models.Ad, error) {
	status := models.AdStatusActive
	ads, err := r.ByFilter(ctx, models.AdFilter{Status: &status, CreatedBefore: before}, "created_at DESC, id DESC", limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list active ads: %w", err)
	}
	return ads, nil
}

func (r *AdRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AdvertiserID != nil {
		query = query.Where("advertiser_id = ?", *filter.AdvertiserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves ads based on filter criteria
func (r *AdRepositoryImpl) ByFilter(ctx context.Context, filter models.AdFilter, orderBy string, limit, offset int) ([]*models.Ad, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Ad{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.Ad
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of ads matching filter
func (r *AdRepositoryImpl) Count(ctx context.Context, filter models.AdFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Ad{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ad matches the filter
func (r *AdRepositoryImpl) Exists(ctx context.Context, filter models.AdFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
