package repository

import (
	"context"
	"fmt"

	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// CommentRepositoryImpl implements CommentRepository interface
type CommentRepositoryImpl struct {
	*BaseRepository[models.Comment, models.CommentFilter]
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Comment, models.CommentFilter](db),
	}
}

// ListPublicByAd returns visible comments of an ad, pinned first then newest
func (r *CommentRepositoryImpl) ListPublicByAd(ctx context.Context, adID uint) ([]*models.Comment, error) {
	return r.ByFilter(ctx, models.CommentFilter{
		AdID:     &adID,
		Statuses: models.PublicStatuses(),
	}, "is_pinned DESC, created_at DESC, id DESC", 0, 0)
}

// UpdateStatusIf performs a conditional status transition
func (r *CommentRepositoryImpl) UpdateStatusIf(ctx context.Context, id uint, from []models.ParticipationStatus, status models.ParticipationStatus) (int64, error) {
	res := r.getDB(ctx).Model(&models.Comment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update comment status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SetPinned sets the pinned flag of a comment
func (r *CommentRepositoryImpl) SetPinned(ctx context.Context, id uint, pinned bool) error {
	err := r.getDB(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_pinned":  pinned,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to pin comment: %w", err)
	}
	return nil
}

func (r *CommentRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommentFilter) *gorm.DB {
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
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.IsPinned != nil {
		query = query.Where("is_pinned = ?", *filter.IsPinned)
	}
	return query
}

// ByFilter retrieves comments based on filter criteria
func (r *CommentRepositoryImpl) ByFilter(ctx context.Context, filter models.CommentFilter, orderBy string, limit, offset int) ([]*models.Comment, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Comment{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.Comment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of comments matching filter
func (r *CommentRepositoryImpl) Count(ctx context.Context, filter models.CommentFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Comment{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any comment matches the filter
func (r *CommentRepositoryImpl) Exists(ctx context.Context, filter models.CommentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
