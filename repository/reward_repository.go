package repository

import (
	"context"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
)

// RewardRepositoryImpl implements RewardRepository interface
type RewardRepositoryImpl struct {
	*BaseRepository[models.Reward, models.RewardFilter]
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &RewardRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Reward, models.RewardFilter](db),
	}
}

// BySource returns the reward earned by a source, nil if none
func (r *RewardRepositoryImpl) BySource(ctx context.Context, sourceType models.RewardSourceType, sourceID uint) (*models.Reward, error) {
	rows, err := r.ByFilter(ctx, models.RewardFilter{SourceType: &sourceType, SourceID: &sourceID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *RewardRepositoryImpl) applyFilter(query *gorm.DB, filter models.RewardFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SourceType != nil {
		query = query.Where("source_type = ?", *filter.SourceType)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves rewards based on filter criteria
func (r *RewardRepositoryImpl) ByFilter(ctx context.Context, filter models.RewardFilter, orderBy string, limit, offset int) ([]*models.Reward, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Reward{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.Reward
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of rewards matching filter
func (r *RewardRepositoryImpl) Count(ctx context.Context, filter models.RewardFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Reward{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any reward matches the filter
func (r *RewardRepositoryImpl) Exists(ctx context.Context, filter models.RewardFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
