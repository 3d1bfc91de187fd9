// Package models contains domain entities and persistence models for the participation platform
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// AdStatus represents the lifecycle status of an ad
type AdStatus string

const (
	AdStatusDraft    AdStatus = "draft"
	AdStatusActive   AdStatus = "active"
	AdStatusPaused   AdStatus = "paused"
	AdStatusArchived AdStatus = "archived"
)

func (s AdStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusDraft, AdStatusActive, AdStatusPaused, AdStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AdStatus
func (s *AdStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into AdStatus", value)
	}
	*s = AdStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for AdStatus
func (s AdStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AdStatus: %s", s)
	}
	return string(s), nil
}

// ParticipationKind names the participation workflow an ad may enable
type ParticipationKind string

const (
	ParticipationComment ParticipationKind = "comment"
	ParticipationUGC     ParticipationKind = "ugc"
	ParticipationSurvey  ParticipationKind = "survey"
	ParticipationTester  ParticipationKind = "tester"
)

// Ad is an advertiser-owned content unit users engage with.
// The Has* flags gate which participation workflows accept writes.
type Ad struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AdvertiserID uint       `gorm:"not null;index:idx_ads_advertiser_id" json:"advertiser_id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	MediaURL     string     `gorm:"type:text;not null" json:"media_url"`
	ThumbnailURL *string    `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Tags         StringList `gorm:"not null;default:'{}'" json:"tags"`
	Status       AdStatus   `gorm:"type:varchar(20);not null;default:'draft';index:idx_ads_status" json:"status"`
	HasComments  bool       `gorm:"not null;default:false" json:"has_comments"`
	HasUGC       bool       `gorm:"column:has_ugc;not null;default:false" json:"has_ugc"`
	HasSurvey    bool       `gorm:"not null;default:false" json:"has_survey"`
	HasTester    bool       `gorm:"not null;default:false" json:"has_tester"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_ads_created_at" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func (Ad) TableName() string {
	return "ads"
}

// BeforeCreate is called before creating a new record
func (a *Ad) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AdStatusDraft
	}
	if a.Tags == nil {
		a.Tags = StringList{}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Ad) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// Accepts reports whether the ad currently takes participation of the given kind
func (a *Ad) Accepts(kind ParticipationKind) bool {
	if a.Status != AdStatusActive {
		return false
	}
	switch kind {
	case ParticipationComment:
		return a.HasComments
	case ParticipationUGC:
		return a.HasUGC
	case ParticipationSurvey:
		return a.HasSurvey
	case ParticipationTester:
		return a.HasTester
	default:
		return false
	}
}

// AdFilter represents filter criteria for ads
type AdFilter struct {
	ID            *uint      `json:"id,omitempty"`
	AdvertiserID  *uint      `json:"advertiser_id,omitempty"`
	Status        *AdStatus  `json:"status,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
