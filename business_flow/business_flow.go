package businessflow

import (
	"encoding/json"
	"time"

	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/models"
	"gorm.io/datatypes"
)

// ClientMetadata holds client information used for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) ipAddress() *string {
	if cm == nil || cm.IPAddress == "" {
		return nil
	}
	return &cm.IPAddress
}

func (cm *ClientMetadata) userAgent() *string {
	if cm == nil || cm.UserAgent == "" {
		return nil
	}
	return &cm.UserAgent
}

func (cm *ClientMetadata) requestID() *string {
	if cm == nil || cm.RequestID == "" {
		return nil
	}
	return &cm.RequestID
}

// sideEffect records the outcome of a best-effort step
func sideEffect(name string, err error) dto.SideEffect {
	se := dto.SideEffect{Name: name, OK: err == nil}
	if err != nil {
		se.Error = err.Error()
	}
	sideEffectsTotal.WithLabelValues(name, outcomeLabel(err)).Inc()
	return se
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func jsonStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func ToAdItem(ad models.Ad) dto.AdItem {
	tags := []string(ad.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.AdItem{
		ID:           ad.ID,
		AdvertiserID: ad.AdvertiserID,
		Title:        ad.Title,
		Description:  ad.Description,
		MediaURL:     ad.MediaURL,
		ThumbnailURL: ad.ThumbnailURL,
		Tags:         tags,
		Status:       ad.Status.String(),
		HasComments:  ad.HasComments,
		HasUGC:       ad.HasUGC,
		HasSurvey:    ad.HasSurvey,
		HasTester:    ad.HasTester,
		CreatedAt:    formatTime(ad.CreatedAt),
	}
}

func ToCommentItem(c models.Comment) dto.CommentItem {
	return dto.CommentItem{
		ID:        c.ID,
		AdID:      c.AdID,
		UserID:    c.UserID,
		Content:   c.Content,
		Status:    c.Status.String(),
		IsPinned:  c.IsPinned,
		ParentID:  c.ParentID,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func ToUGCItem(u models.UGCItem) dto.UGCItem {
	return dto.UGCItem{
		ID:           u.ID,
		AdID:         u.AdID,
		UserID:       u.UserID,
		MediaURL:     u.MediaURL,
		ThumbnailURL: u.ThumbnailURL,
		Type:         string(u.Type),
		Status:       u.Status.String(),
		QualityScore: u.QualityScore,
		PRBadge:      u.PRBadge,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

func ToSurveyAnswerItem(a models.SurveyAnswer) dto.SurveyAnswerItem {
	return dto.SurveyAnswerItem{
		ID:            a.ID,
		SurveyID:      a.SurveyID,
		QuestionID:    a.QuestionID,
		AnswerText:    a.AnswerText,
		AnswerOptions: jsonStrings(a.AnswerOptions),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}

func ToSurveyItem(s models.Survey) dto.SurveyItem {
	questions := make([]dto.SurveyQuestionItem, 0, len(s.Questions))
	for _, q := range s.Questions {
		questions = append(questions, dto.SurveyQuestionItem{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: string(q.QuestionType),
			Options:      jsonStrings(q.Options),
			OrderIndex:   q.OrderIndex,
		})
	}
	return dto.SurveyItem{
		ID:          s.ID,
		AdID:        s.AdID,
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		Questions:   questions,
	}
}

func ToTesterApplicantItem(a models.TesterApplicant) dto.TesterApplicantItem {
	data := map[string]any(a.ApplicationData)
	if data == nil {
		data = map[string]any{}
	}
	return dto.TesterApplicantItem{
		ID:              a.ID,
		CampaignID:      a.CampaignID,
		UserID:          a.UserID,
		ApplicationData: data,
		Status:          string(a.Status),
		CreatedAt:       formatTime(a.CreatedAt),
	}
}

func ToTesterReportItem(r models.TesterReport) dto.TesterReportItem {
	urls := []string(r.MediaURLs)
	if urls == nil {
		urls = []string{}
	}
	return dto.TesterReportItem{
		ID:          r.ID,
		ApplicantID: r.ApplicantID,
		Content:     r.Content,
		MediaURLs:   urls,
		CreatedAt:   formatTime(r.CreatedAt),
	}
}

func ToTesterCampaignItem(c models.TesterCampaign, applied int64) dto.TesterCampaignItem {
	remaining := int64(c.MaxApplicants) - applied
	if remaining < 0 {
		remaining = 0
	}
	return dto.TesterCampaignItem{
		ID:             c.ID,
		AdID:           c.AdID,
		Title:          c.Title,
		Description:    c.Description,
		MaxApplicants:  c.MaxApplicants,
		Applied:        applied,
		RemainingSpots: remaining,
		Status:         string(c.Status),
		Deadline:       formatTimePtr(c.Deadline),
	}
}

func ToRewardItem(r models.Reward) dto.RewardItem {
	return dto.RewardItem{
		ID:         r.ID,
		AdID:       r.AdID,
		UserID:     r.UserID,
		Type:       r.Type,
		Value:      r.Value,
		SourceType: string(r.SourceType),
		SourceID:   r.SourceID,
		Status:     string(r.Status),
		CouponCode: r.CouponCode,
		ExpiresAt:  formatTimePtr(r.ExpiresAt),
		CreatedAt:  formatTime(r.CreatedAt),
	}
}
