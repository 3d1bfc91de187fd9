package dto

// CreateCommentRequest carries a new comment on an ad
type CreateCommentRequest struct {
	AdID     uint   `json:"-"`
	UserID   uint   `json:"-"`
	Content  string `json:"content" validate:"required,max=1000"`
	ParentID *uint  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// CommentItem represents a comment in responses and listings
type CommentItem struct {
	ID        uint   `json:"id"`
	AdID      uint   `json:"ad_id"`
	UserID    uint   `json:"user_id"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	IsPinned  bool   `json:"is_pinned"`
	ParentID  *uint  `json:"parent_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateCommentResponse returns the recorded comment
type CreateCommentResponse struct {
	Message     string       `json:"message"`
	Comment     CommentItem  `json:"comment"`
	SideEffects []SideEffect `json:"side_effects"`
}

// CreateUGCRequest carries a UGC submission; MediaURL comes from a finished upload
type CreateUGCRequest struct {
	AdID         uint    `json:"-"`
	UserID       uint    `json:"-"`
	MediaURL     string  `json:"media_url" validate:"required,max=2048"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty" validate:"omitempty,max=2048"`
	Type         string  `json:"type" validate:"required,oneof=image video"`
}

// UGCItem represents a UGC submission in responses and listings
type UGCItem struct {
	ID           uint    `json:"id"`
	AdID         uint    `json:"ad_id"`
	UserID       uint    `json:"user_id"`
	MediaURL     string  `json:"media_url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	QualityScore float64 `json:"quality_score"`
	PRBadge      bool    `json:"pr_badge"`
	CreatedAt    string  `json:"created_at"`
}

// CreateUGCResponse returns the recorded UGC item
type CreateUGCResponse struct {
	Message     string       `json:"message"`
	UGC         UGCItem      `json:"ugc"`
	SideEffects []SideEffect `json:"side_effects"`
}

// SurveyAnswerInput is one answer of a batch; text, options, or both
type SurveyAnswerInput struct {
	QuestionID    uint     `json:"question_id" validate:"required,gt=0"`
	AnswerText    *string  `json:"answer_text,omitempty" validate:"omitempty,max=2000"`
	AnswerOptions []string `json:"answer_options,omitempty" validate:"omitempty,dive,max=255"`
}

// SubmitSurveyAnswersRequest carries a batch of answers for the ad's active survey
type SubmitSurveyAnswersRequest struct {
	AdID    uint                `json:"-"`
	UserID  uint                `json:"-"`
	Answers []SurveyAnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// SurveyAnswerItem represents a stored answer
type SurveyAnswerItem struct {
	ID            uint     `json:"id"`
	SurveyID      uint     `json:"survey_id"`
	QuestionID    uint     `json:"question_id"`
	AnswerText    *string  `json:"answer_text,omitempty"`
	AnswerOptions []string `json:"answer_options,omitempty"`
	UpdatedAt     string   `json:"updated_at"`
}

// SubmitSurveyAnswersResponse returns the stored answers of the batch
type SubmitSurveyAnswersResponse struct {
	Message     string             `json:"message"`
	SurveyID    uint               `json:"survey_id"`
	Answers     []SurveyAnswerItem `json:"answers"`
	SideEffects []SideEffect       `json:"side_effects"`
}
