package dto

// AdItem represents an ad with its participation capabilities
type AdItem struct {
	ID           uint     `json:"id"`
	AdvertiserID uint     `json:"advertiser_id"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	MediaURL     string   `json:"media_url"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"`
	HasComments  bool     `json:"has_comments"`
	HasUGC       bool     `json:"has_ugc"`
	HasSurvey    bool     `json:"has_survey"`
	HasTester    bool     `json:"has_tester"`
	CreatedAt    string   `json:"created_at"`
}

// ListAdsRequest pages through active ads newest first.
// Cursor is the next_cursor of the previous page.
type ListAdsRequest struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ListAdsResponse returns one page of ads
type ListAdsResponse struct {
	Message    string   `json:"message"`
	Ads        []AdItem `json:"ads"`
	NextCursor *string  `json:"next_cursor,omitempty"`
}

// GetAdResponse returns one ad
type GetAdResponse struct {
	Message string `json:"message"`
	Ad      AdItem `json:"ad"`
}

// ListCommentsResponse returns the visible comments of an ad
type ListCommentsResponse struct {
	Message  string        `json:"message"`
	Comments []CommentItem `json:"comments"`
}

// ListUGCResponse returns the visible UGC of an ad
type ListUGCResponse struct {
	Message string    `json:"message"`
	Items   []UGCItem `json:"items"`
}

// SurveyQuestionItem represents a survey question
type SurveyQuestionItem struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options,omitempty"`
	OrderIndex   int      `json:"order_index"`
}

// SurveyItem represents a survey with its questions
type SurveyItem struct {
	ID          uint                 `json:"id"`
	AdID        uint                 `json:"ad_id"`
	Title       string               `json:"title"`
	Description *string              `json:"description,omitempty"`
	Status      string               `json:"status"`
	Questions   []SurveyQuestionItem `json:"questions"`
}

// GetSurveyResponse returns the active survey of an ad
type GetSurveyResponse struct {
	Message string     `json:"message"`
	Survey  SurveyItem `json:"survey"`
}

// MyParticipationResponse gathers everything a user contributed
type MyParticipationResponse struct {
	Message       string                `json:"message"`
	Comments      []CommentItem         `json:"comments"`
	UGC           []UGCItem             `json:"ugc"`
	SurveyAnswers []SurveyAnswerItem    `json:"survey_answers"`
	Applications  []TesterApplicantItem `json:"applications"`
}
