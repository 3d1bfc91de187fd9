package models

import (
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// UGCType is the media kind of a UGC submission
type UGCType string

const (
	UGCTypeImage UGCType = "image"
	UGCTypeVideo UGCType = "video"
)

// Valid checks if the media kind is supported
func (t UGCType) Valid() bool {
	return t == UGCTypeImage || t == UGCTypeVideo
}

// UGCItem is user generated media submitted for an ad
type UGCItem struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	AdID         uint                `gorm:"not null;index:idx_ugc_ad_id" json:"ad_id"`
	UserID       uint                `gorm:"not null;index:idx_ugc_user_id" json:"user_id"`
	MediaURL     string              `gorm:"type:text;not null" json:"media_url"`
	ThumbnailURL *string             `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Type         UGCType             `gorm:"type:varchar(10);not null" json:"type"`
	Status       ParticipationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_ugc_status" json:"status"`
	QualityScore float64             `gorm:"not null;default:0" json:"quality_score"`
	PRBadge      bool                `gorm:"column:pr_badge;not null;default:false" json:"pr_badge"`
	CreatedAt    time.Time           `gorm:"not null;index:idx_ugc_created_at" json:"created_at"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`

	// Relations
	Ad *Ad `gorm:"foreignKey:AdID;references:ID" json:"ad,omitempty"`
}

func (UGCItem) TableName() string {
	return "ugc"
}

// BeforeCreate is called before creating a new record
func (u *UGCItem) BeforeCreate(tx *gorm.DB) error {
	if u.Status == "" {
		u.Status = ParticipationStatusPending
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	return nil
}

// UGCFilter represents filter criteria for UGC items
type UGCFilter struct {
	ID       *uint                 `json:"id,omitempty"`
	AdID     *uint                 `json:"ad_id,omitempty"`
	AdIDs    []uint                `json:"ad_ids,omitempty"`
	UserID   *uint                 `json:"user_id,omitempty"`
	Type     *UGCType              `json:"type,omitempty"`
	Statuses []ParticipationStatus `json:"statuses,omitempty"`
}
