package models

import (
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// AdExposure is an append-only record that an ad was engaged with
type AdExposure struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	AdID      uint              `gorm:"not null;index:idx_ad_exposures_ad_id" json:"ad_id"`
	UserID    *uint             `gorm:"index:idx_ad_exposures_user_id" json:"user_id,omitempty"`
	Source    ParticipationKind `gorm:"type:varchar(20);not null" json:"source"`
	ExposedAt time.Time         `gorm:"not null;index:idx_ad_exposures_exposed_at" json:"exposed_at"`
}

func (AdExposure) TableName() string {
	return "ad_exposures"
}

// BeforeCreate is called before creating a new record
func (e *AdExposure) BeforeCreate(tx *gorm.DB) error {
	if e.ExposedAt.IsZero() {
		e.ExposedAt = utils.UTCNow()
	}
	return nil
}

// AdExposureFilter represents filter criteria for exposure queries
type AdExposureFilter struct {
	AdID   *uint
	UserID *uint
	Source *ParticipationKind
}
