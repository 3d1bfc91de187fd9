package repository

import (
	"context"

	"github.com/usbest/usbest-backend/models"
	"gorm.io/gorm"
)

// TesterReportRepositoryImpl implements TesterReportRepository interface
type TesterReportRepositoryImpl struct {
	*BaseRepository[models.TesterReport, models.TesterReportFilter]
}

// NewTesterReportRepository creates a new tester report repository
func NewTesterReportRepository(db *gorm.DB) TesterReportRepository {
	return &TesterReportRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TesterReport, models.TesterReportFilter](db),
	}
}

// ByApplicantID returns the report filed for an applicant, nil if none
func (r *TesterReportRepositoryImpl) ByApplicantID(ctx context.Context, applicantID uint) (*models.TesterReport, error) {
	rows, err := r.ByFilter(ctx, models.TesterReportFilter{ApplicantID: &applicantID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *TesterReportRepositoryImpl) applyFilter(query *gorm.DB, filter models.TesterReportFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ApplicantID != nil {
		query = query.Where("applicant_id = ?", *filter.ApplicantID)
	}
	return query
}

// ByFilter retrieves reports based on filter criteria
func (r *TesterReportRepositoryImpl) ByFilter(ctx context.Context, filter models.TesterReportFilter, orderBy string, limit, offset int) ([]*models.TesterReport, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterReport{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.TesterReport
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of reports matching filter
func (r *TesterReportRepositoryImpl) Count(ctx context.Context, filter models.TesterReportFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterReport{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any report matches the filter
func (r *TesterReportRepositoryImpl) Exists(ctx context.Context, filter models.TesterReportFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
