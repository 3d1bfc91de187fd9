package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records an advertiser moderation action
type AuditLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AdvertiserID *uint          `gorm:"index:idx_audit_advertiser_id" json:"advertiser_id,omitempty"`
	Action       string         `gorm:"type:varchar(50);not null;index:idx_audit_action" json:"action"`
	TargetType   string         `gorm:"type:varchar(30);not null" json:"target_type"`
	TargetID     uint           `gorm:"not null;index:idx_audit_target_id" json:"target_id"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string        `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent    *string        `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string        `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	Success      *bool          `gorm:"default:true" json:"success"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionCommentAdopted    = "comment_adopted"
	AuditActionCommentPinned     = "comment_pinned"
	AuditActionUGCAdopted        = "ugc_adopted"
	AuditActionApplicantSelected = "applicant_selected"
	AuditActionRewardReissued    = "reward_reissued"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	AdvertiserID  *uint
	Action        *string
	TargetType    *string
	TargetID      *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
