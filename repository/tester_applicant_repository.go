package repository

import (
	"context"
	"fmt"

	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// TesterApplicantRepositoryImpl implements TesterApplicantRepository interface
type TesterApplicantRepositoryImpl struct {
	*BaseRepository[models.TesterApplicant, models.TesterApplicantFilter]
}

// NewTesterApplicantRepository creates a new tester applicant repository
func NewTesterApplicantRepository(db *gorm.DB) TesterApplicantRepository {
	return &TesterApplicantRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TesterApplicant, models.TesterApplicantFilter](db),
	}
}

// ByCampaignAndUser returns the user's application to a campaign, nil if none
func (r *TesterApplicantRepositoryImpl) ByCampaignAndUser(ctx context.Context, campaignID, userID uint) (*models.TesterApplicant, error) {
	rows, err := r.ByFilter(ctx, models.TesterApplicantFilter{CampaignID: &campaignID, UserID: &userID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// LatestByUserAndStatus returns the user's most recent application in the given status
func (r *TesterApplicantRepositoryImpl) LatestByUserAndStatus(ctx context.Context, userID uint, status models.ApplicantStatus) (*models.TesterApplicant, error) {
	rows, err := r.ByFilter(ctx, models.TesterApplicantFilter{UserID: &userID, Status: &status}, "created_at DESC, id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateStatusIf moves an applicant from one status to another; returns rows affected
func (r *TesterApplicantRepositoryImpl) UpdateStatusIf(ctx context.Context, id uint, from, status models.ApplicantStatus) (int64, error) {
	res := r.getDB(ctx).Model(&models.TesterApplicant{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update applicant status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TesterApplicantRepositoryImpl) applyFilter(query *gorm.DB, filter models.TesterApplicantFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves applicants based on filter criteria
func (r *TesterApplicantRepositoryImpl) ByFilter(ctx context.Context, filter models.TesterApplicantFilter, orderBy string, limit, offset int) ([]*models.TesterApplicant, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterApplicant{}), filter)
	query = paginate(query, orderBy, "id DESC", limit, offset)

	var rows []*models.TesterApplicant
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of applicants matching filter
func (r *TesterApplicantRepositoryImpl) Count(ctx context.Context, filter models.TesterApplicantFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.TesterApplicant{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any applicant matches the filter
func (r *TesterApplicantRepositoryImpl) Exists(ctx context.Context, filter models.TesterApplicantFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
