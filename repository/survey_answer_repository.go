package repository

import (
	"context"
	"fmt"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SurveyAnswerRepositoryImpl implements SurveyAnswerRepository interface
type SurveyAnswerRepositoryImpl struct {
	*BaseRepository[models.SurveyAnswer, models.SurveyAnswerFilter]
}

// NewSurveyAnswerRepository creates a new survey answer repository
func NewSurveyAnswerRepository(db *gorm.DB) SurveyAnswerRepository {
	return &SurveyAnswerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SurveyAnswer, models.SurveyAnswerFilter](db),
	}
}

// Upsert inserts answers, overwriting any existing answer for the same (survey, question, user)
func (r *SurveyAnswerRepositoryImpl) Upsert(ctx context.Context, answers []*models.SurveyAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "survey_id"},
			{Name: "question_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"answer_text", "answer_options", "updated_at"}),
	}).Create(&answers).Error
	if err != nil {
		return fmt.Errorf("failed to upsert survey answers: %w", err)
	}
	return nil
}

func (r *SurveyAnswerRepositoryImpl) applyFilter(query *gorm.DB, filter models.SurveyAnswerFilter) *gorm.DB {
	if filter.SurveyID != nil {
		query = query.Where("survey_id = ?", *filter.SurveyID)
	}
	if filter.QuestionID != nil {
		query = query.Where("question_id = ?", *filter.QuestionID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	return query
}

// ByFilter retrieves survey answers based on filter criteria
func (r *SurveyAnswerRepositoryImpl) ByFilter(ctx context.Context, filter models.SurveyAnswerFilter, orderBy string, limit, offset int) ([]*models.SurveyAnswer, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SurveyAnswer{}), filter)
	query = paginate(query, orderBy, "id ASC", limit, offset)

	var rows []*models.SurveyAnswer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of survey answers matching filter
func (r *SurveyAnswerRepositoryImpl) Count(ctx context.Context, filter models.SurveyAnswerFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SurveyAnswer{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any survey answer matches the filter
func (r *SurveyAnswerRepositoryImpl) Exists(ctx context.Context, filter models.SurveyAnswerFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
