package repository

import (
	"context"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
)

// AdExposureRepositoryImpl implements AdExposureRepository interface
type AdExposureRepositoryImpl struct {
	*BaseRepository[models.AdExposure, models.AdExposureFilter]
}

// NewAdExposureRepository creates a new ad exposure repository
func NewAdExposureRepository(db *gorm.DB) AdExposureRepository {
	return &AdExposureRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AdExposure, models.AdExposureFilter](db),
	}
}

func (r *AdExposureRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdExposureFilter) *gorm.DB {
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	return query
}

// ByFilter retrieves exposures based on filter criteria
func (r *AdExposureRepositoryImpl) ByFilter(ctx context.Context, filter models.AdExposureFilter, orderBy string, limit, offset int) ([]*models.AdExposure, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.AdExposure{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.AdExposure
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of exposures matching filter
func (r *AdExposureRepositoryImpl) Count(ctx context.Context, filter models.AdExposureFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.AdExposure{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any exposure matches the filter
func (r *AdExposureRepositoryImpl) Exists(ctx context.Context, filter models.AdExposureFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
