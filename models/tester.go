package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TesterCampaignStatus represents the status of a tester campaign
type TesterCampaignStatus string

const (
	TesterCampaignStatusOpen      TesterCampaignStatus = "open"
	TesterCampaignStatusClosed    TesterCampaignStatus = "closed"
	TesterCampaignStatusCompleted TesterCampaignStatus = "completed"
)

// Valid checks if the status is valid
func (s TesterCampaignStatus) Valid() bool {
	switch s {
	case TesterCampaignStatusOpen, TesterCampaignStatusClosed, TesterCampaignStatusCompleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for TesterCampaignStatus
func (s *TesterCampaignStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into TesterCampaignStatus", value)
	}
	*s = TesterCampaignStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for TesterCampaignStatus
func (s TesterCampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid TesterCampaignStatus: %s", s)
	}
	return string(s), nil
}

// ApplicantStatus represents the status of a tester application
type ApplicantStatus string

const (
	ApplicantStatusPending   ApplicantStatus = "pending"
	ApplicantStatusSelected  ApplicantStatus = "selected"
	ApplicantStatusRejected  ApplicantStatus = "rejected"
	ApplicantStatusCompleted ApplicantStatus = "completed"
)

// Valid checks if the status is valid
func (s ApplicantStatus) Valid() bool {
	switch s {
	case ApplicantStatusPending, ApplicantStatusSelected,
		ApplicantStatusRejected, ApplicantStatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks the applicant state machine
func (s ApplicantStatus) CanTransitionTo(next ApplicantStatus) bool {
	switch s {
	case ApplicantStatusPending:
		return next == ApplicantStatusSelected || next == ApplicantStatusRejected
	case ApplicantStatusSelected:
		return next == ApplicantStatusCompleted
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ApplicantStatus
func (s *ApplicantStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ApplicantStatus", value)
	}
	*s = ApplicantStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for ApplicantStatus
func (s ApplicantStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ApplicantStatus: %s", s)
	}
	return string(s), nil
}

// TesterCampaign is a capacity-bounded call for product testers tied to an ad.
// The current applicant count is always derived from tester_applicants.
type TesterCampaign struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	AdID          uint                 `gorm:"not null;index:idx_tester_campaigns_ad_id" json:"ad_id"`
	Title         string               `gorm:"type:varchar(255);not null" json:"title"`
	Description   string               `gorm:"type:text;not null;default:''" json:"description"`
	MaxApplicants int                  `gorm:"not null" json:"max_applicants"`
	Status        TesterCampaignStatus `gorm:"type:varchar(20);not null;default:'open';index:idx_tester_campaigns_status" json:"status"`
	Deadline      *time.Time           `json:"deadline,omitempty"`
	CreatedAt     time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`

	// Relations
	Ad *Ad `gorm:"foreignKey:AdID;references:ID" json:"ad,omitempty"`
}

func (TesterCampaign) TableName() string {
	return "tester_campaigns"
}

// BeforeCreate is called before creating a new record
func (c *TesterCampaign) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = TesterCampaignStatusOpen
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsAcceptingApplications reports whether the campaign is open and before its deadline
func (c *TesterCampaign) IsAcceptingApplications() bool {
	return c.Status == TesterCampaignStatusOpen && !utils.IsExpiredPtr(c.Deadline)
}

// TesterCampaignFilter represents filter criteria for tester campaigns
type TesterCampaignFilter struct {
	ID     *uint                 `json:"id,omitempty"`
	AdID   *uint                 `json:"ad_id,omitempty"`
	AdIDs  []uint                `json:"ad_ids,omitempty"`
	Status *TesterCampaignStatus `json:"status,omitempty"`
}

// TesterApplicant is one user's application to a campaign, unique per (campaign, user)
type TesterApplicant struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	CampaignID      uint              `gorm:"not null;uniqueIndex:uk_tester_applicants_campaign_user,priority:1" json:"campaign_id"`
	UserID          uint              `gorm:"not null;uniqueIndex:uk_tester_applicants_campaign_user,priority:2;index:idx_tester_applicants_user_id" json:"user_id"`
	ApplicationData datatypes.JSONMap `json:"application_data"`
	Status          ApplicantStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_tester_applicants_status" json:"status"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`

	// Relations
	Campaign *TesterCampaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
}

func (TesterApplicant) TableName() string {
	return "tester_applicants"
}

// BeforeCreate is called before creating a new record
func (a *TesterApplicant) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = ApplicantStatusPending
	}
	if a.ApplicationData == nil {
		a.ApplicationData = datatypes.JSONMap{}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// TesterApplicantFilter represents filter criteria for applicants
type TesterApplicantFilter struct {
	ID         *uint            `json:"id,omitempty"`
	CampaignID *uint            `json:"campaign_id,omitempty"`
	UserID     *uint            `json:"user_id,omitempty"`
	Status     *ApplicantStatus `json:"status,omitempty"`
}

// TesterReport is the report a selected applicant files after testing
type TesterReport struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ApplicantID uint       `gorm:"not null;uniqueIndex:uk_tester_reports_applicant_id" json:"applicant_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	MediaURLs   StringList `gorm:"column:media_urls;not null;default:'{}'" json:"media_urls"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (TesterReport) TableName() string {
	return "tester_reports"
}

// BeforeCreate is called before creating a new record
func (r *TesterReport) BeforeCreate(tx *gorm.DB) error {
	if r.MediaURLs == nil {
		r.MediaURLs = StringList{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// TesterReportFilter represents filter criteria for tester reports
type TesterReportFilter struct {
	ID          *uint `json:"id,omitempty"`
	ApplicantID *uint `json:"applicant_id,omitempty"`
}
