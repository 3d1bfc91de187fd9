package models

import (
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// Comment is a user comment on an ad, optionally threaded under a parent
type Comment struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	AdID      uint                `gorm:"not null;index:idx_comments_ad_id" json:"ad_id"`
	UserID    uint                `gorm:"not null;index:idx_comments_user_id" json:"user_id"`
	Content   string              `gorm:"type:text;not null" json:"content"`
	Status    ParticipationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_comments_status" json:"status"`
	IsPinned  bool                `gorm:"not null;default:false" json:"is_pinned"`
	ParentID  *uint               `gorm:"index:idx_comments_parent_id" json:"parent_id,omitempty"`
	CreatedAt time.Time           `gorm:"not null;index:idx_comments_created_at" json:"created_at"`
	UpdatedAt *time.Time          `json:"updated_at,omitempty"`

	// Relations
	Ad *Ad `gorm:"foreignKey:AdID;references:ID" json:"ad,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate is called before creating a new record
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = ParticipationStatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CommentFilter represents filter criteria for comments
type CommentFilter struct {
	ID       *uint                 `json:"id,omitempty"`
	AdID     *uint                 `json:"ad_id,omitempty"`
	AdIDs    []uint                `json:"ad_ids,omitempty"`
	UserID   *uint                 `json:"user_id,omitempty"`
	ParentID *uint                 `json:"parent_id,omitempty"`
	Statuses []ParticipationStatus `json:"statuses,omitempty"`
	IsPinned *bool                 `json:"is_pinned,omitempty"`
}
