package repository

import (
	"context"
	"fmt"

	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// UGCRepositoryImpl implements UGCRepository interface
type UGCRepositoryImpl struct {
	*BaseRepository[models.UGCItem, models.UGCFilter]
}

// NewUGCRepository creates a new UGC repository
func NewUGCRepository(db *gorm.DB) UGCRepository {
	return &UGCRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UGCItem, models.UGCFilter](db),
	}
}

// ListPublicByAd returns visible UGC of an ad, best quality first
func (r *UGCRepositoryImpl) ListPublicByAd(ctx context.Context, adID uint) ([]*models.UGCItem, error) {
	return r.ByFilter(ctx, models.UGCFilter{
		AdID:     &adID,
		Statuses: models.PublicStatuses(),
	}, "quality_score DESC, created_at DESC, id DESC", 0, 0)
}

// UpdateStatusIf performs a conditional status transition
func (r *UGCRepositoryImpl) UpdateStatusIf(ctx context.Context, id uint, from []models.ParticipationStatus, status models.ParticipationStatus) (int64, error) {
	res := r.getDB(ctx).Model(&models.UGCItem{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update ugc status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *UGCRepositoryImpl) applyFilter(query *gorm.DB, filter models.UGCFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if len(filter.AdIDs) > 0 {
		query = query.Where("ad_id IN ?", filter.AdIDs)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	return query
}

// ByFilter retrieves UGC items based on filter criteria
func (r *UGCRepositoryImpl) ByFilter(ctx context.Context, filter models.UGCFilter, orderBy string, limit, offset int) ([]*models.UGCItem, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.UGCItem{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.UGCItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of UGC items matching filter
func (r *UGCRepositoryImpl) Count(ctx context.Context, filter models.UGCFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.UGCItem{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any UGC item matches the filter
func (r *UGCRepositoryImpl) Exists(ctx context.Context, filter models.UGCFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
