package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
)

// SurveyRepositoryImpl implements SurveyRepository interface
type SurveyRepositoryImpl struct {
	*BaseRepository[models.Survey, models.SurveyFilter]
}

// NewSurveyRepository creates a new survey repository
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &SurveyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Survey, models.SurveyFilter](db),
	}
}

// ActiveByAd returns the newest active survey of an ad with its questions in order
func (r *SurveyRepositoryImpl) ActiveByAd(ctx context.Context, adID uint) (*models.Survey, error) {
	var survey models.Survey
	err := r.getDB(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Where("ad_id = ? AND status = ?", adID, models.SurveyStatusActive).
		Order("created_at DESC, id DESC").
		Take(&survey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active survey: %w", err)
	}
	return &survey, nil
}

func (r *SurveyRepositoryImpl) applyFilter(query *gorm.DB, filter models.SurveyFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves surveys based on filter criteria
func (r *SurveyRepositoryImpl) ByFilter(ctx context.Context, filter models.SurveyFilter, orderBy string, limit, offset int) ([]*models.Survey, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Survey{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.Survey
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of surveys matching filter
func (r *SurveyRepositoryImpl) Count(ctx context.Context, filter models.SurveyFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Survey{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any survey matches the filter
func (r *SurveyRepositoryImpl) Exists(ctx context.Context, filter models.SurveyFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
