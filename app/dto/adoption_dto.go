package dto

// AdoptRequest adopts a comment or UGC item on behalf of the owning advertiser
type AdoptRequest struct {
	SourceType   string `json:"source_type" validate:"required,oneof=comment ugc"`
	SourceID     uint   `json:"source_id" validate:"required,gt=0"`
	AdvertiserID uint   `json:"-"`
}

// CommentActionRequest is the body of the comment moderation endpoint
type CommentActionRequest struct {
	Action string `json:"action" validate:"required,oneof=adopt pin"`
}

// RewardItem represents a reward
type RewardItem struct {
	ID         uint    `json:"id"`
	AdID       uint    `json:"ad_id"`
	UserID     uint    `json:"user_id"`
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	SourceType string  `json:"source_type"`
	SourceID   uint    `json:"source_id"`
	Status     string  `json:"status"`
	CouponCode *string `json:"coupon_code,omitempty"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// AdoptResponse returns the adopted source and its reward.
// Reward is nil when issuance failed; see SideEffects.
type AdoptResponse struct {
	Message     string       `json:"message"`
	SourceType  string       `json:"source_type"`
	Comment     *CommentItem `json:"comment,omitempty"`
	UGC         *UGCItem     `json:"ugc,omitempty"`
	Reward      *RewardItem  `json:"reward"`
	SideEffects []SideEffect `json:"side_effects"`
}

// PinCommentRequest pins a comment
type PinCommentRequest struct {
	CommentID    uint `json:"-"`
	AdvertiserID uint `json:"-"`
}

// PinCommentResponse returns the pinned comment
type PinCommentResponse struct {
	Message     string       `json:"message"`
	Comment     CommentItem  `json:"comment"`
	SideEffects []SideEffect `json:"side_effects"`
}

// IssueMissingRewardRequest creates the reward of an adopted source that has none
type IssueMissingRewardRequest struct {
	SourceType   string `json:"source_type" validate:"required,oneof=comment ugc"`
	SourceID     uint   `json:"source_id" validate:"required,gt=0"`
	AdvertiserID uint   `json:"-"`
}

// IssueMissingRewardResponse returns the reward; Created is false when it already existed
type IssueMissingRewardResponse struct {
	Message string     `json:"message"`
	Reward  RewardItem `json:"reward"`
	Created bool       `json:"created"`
}

// ListRewardsResponse lists a user's rewards
type ListRewardsResponse struct {
	Message string       `json:"message"`
	Rewards []RewardItem `json:"rewards"`
}
