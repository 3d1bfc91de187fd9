package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/gorm"
)

// RewardSourceType names the participation kind that earned a reward
type RewardSourceType string

const (
	RewardSourceComment RewardSourceType = "comment"
	RewardSourceUGC     RewardSourceType = "ugc"
	RewardSourceSurvey  RewardSourceType = "survey"
	RewardSourceTester  RewardSourceType = "tester"
)

// Valid checks if the source type is valid
func (s RewardSourceType) Valid() bool {
	switch s {
	case RewardSourceComment, RewardSourceUGC, RewardSourceSurvey, RewardSourceTester:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RewardSourceType
func (s *RewardSourceType) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into RewardSourceType", value)
	}
	*s = RewardSourceType(v)
	return nil
}

// Value implements the driver.Valuer interface for RewardSourceType
func (s RewardSourceType) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RewardSourceType: %s", s)
	}
	return string(s), nil
}

// Reward kinds
const (
	RewardTypeCoupon = "coupon"
	RewardTypePoint  = "point"
)

// RewardStatus represents the fulfilment status of a reward
type RewardStatus string

const (
	RewardStatusPending   RewardStatus = "pending"
	RewardStatusIssued    RewardStatus = "issued"
	RewardStatusUsed      RewardStatus = "used"
	RewardStatusExpired   RewardStatus = "expired"
)

// Valid checks if the status is valid
func (s RewardStatus) Valid() bool {
	switch s {
	case RewardStatusPending, RewardStatusIssued, RewardStatusUsed, RewardStatusExpired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RewardStatus
func (s *RewardStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into RewardStatus", value)
	}
	*s = RewardStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for RewardStatus
func (s RewardStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RewardStatus: %s", s)
	}
	return string(s), nil
}

// Reward is granted to a user when their contribution is adopted.
// A source (type, id) can earn at most one reward.
type Reward struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	AdID       uint             `gorm:"not null;index:idx_rewards_ad_id" json:"ad_id"`
	UserID     uint             `gorm:"not null;index:idx_rewards_user_id" json:"user_id"`
	Type       string           `gorm:"type:varchar(50);not null" json:"type"`
	Value      string           `gorm:"type:varchar(255);not null" json:"value"`
	SourceType RewardSourceType `gorm:"type:varchar(20);not null;uniqueIndex:uk_rewards_source,priority:1" json:"source_type"`
	SourceID   uint             `gorm:"not null;uniqueIndex:uk_rewards_source,priority:2" json:"source_id"`
	Status     RewardStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CouponCode *string          `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	CreatedAt  time.Time        `gorm:"not null;index:idx_rewards_created_at" json:"created_at"`
	UpdatedAt  *time.Time       `json:"updated_at,omitempty"`
}

func (Reward) TableName() string {
	return "rewards"
}

// BeforeCreate is called before creating a new record
func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = RewardStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// RewardFilter represents filter criteria for reward queries
type RewardFilter struct {
	ID         *uint
	AdID       *uint
	UserID     *uint
	SourceType *RewardSourceType
	SourceID   *uint
	Status     *RewardStatus
}
