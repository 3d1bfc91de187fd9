package testing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/utils"
	"gorm.io/datatypes"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// AdOption customizes a fixture ad
type AdOption func(*models.Ad)

// WithStatus overrides the ad status
func WithStatus(status models.AdStatus) AdOption {
	return func(a *models.Ad) { a.Status = status }
}

// WithCapabilities sets the participation flags of the ad
func WithCapabilities(comments, ugc, survey, tester bool) AdOption {
	return func(a *models.Ad) {
		a.HasComments = comments
		a.HasUGC = ugc
		a.HasSurvey = survey
		a.HasTester = tester
	}
}

// WithCreatedAt pins the creation time of the ad
func WithCreatedAt(at time.Time) AdOption {
	return func(a *models.Ad) { a.CreatedAt = at }
}

// CreateTestAd creates an active ad with every participation kind enabled unless overridden
func (tf *TestFixtures) CreateTestAd(advertiserID uint, opts ...AdOption) (*models.Ad, error) {
	ad := &models.Ad{
		AdvertiserID: advertiserID,
		Title:        "Sparkling Water Launch",
		Description:  utils.ToPtr("Tell us what you think of the new flavour"),
		MediaURL:     "https://cdn.example.com/ads/sparkling.mp4",
		Tags:         models.StringList{"drinks", "launch"},
		Status:       models.AdStatusActive,
		HasComments:  true,
		HasUGC:       true,
		HasSurvey:    true,
		HasTester:    true,
	}
	for _, opt := range opts {
		opt(ad)
	}

	if err := tf.DB.DB.Create(ad).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ad: %w", err)
	}
	return ad, nil
}

// CreateTestComment creates a comment in the given status
func (tf *TestFixtures) CreateTestComment(adID, userID uint, content string, status models.ParticipationStatus) (*models.Comment, error) {
	comment := &models.Comment{
		AdID:    adID,
		UserID:  userID,
		Content: content,
		Status:  status,
	}
	if err := tf.DB.DB.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test comment: %w", err)
	}
	return comment, nil
}

// CreateTestUGC creates a UGC item in the given status
func (tf *TestFixtures) CreateTestUGC(adID, userID uint, status models.ParticipationStatus, qualityScore float64) (*models.UGCItem, error) {
	item := &models.UGCItem{
		AdID:         adID,
		UserID:       userID,
		MediaURL:     fmt.Sprintf("https://cdn.example.com/ugc/%d/%d.jpg", userID, time.Now().UnixNano()),
		Type:         models.UGCTypeImage,
		Status:       status,
		QualityScore: qualityScore,
	}
	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ugc: %w", err)
	}
	return item, nil
}

// CreateTestSurvey creates an active survey with one question per text given
func (tf *TestFixtures) CreateTestSurvey(adID uint, questions ...string) (*models.Survey, error) {
	options, _ := json.Marshal([]string{"yes", "no"})

	survey := &models.Survey{
		AdID:   adID,
		Title:  "First impressions",
		Status: models.SurveyStatusActive,
	}
	for i, text := range questions {
		survey.Questions = append(survey.Questions, models.SurveyQuestion{
			QuestionText: text,
			QuestionType: models.QuestionTypeSingle,
			Options:      datatypes.JSON(options),
			OrderIndex:   i,
		})
	}
	if err := tf.DB.DB.Create(survey).Error; err != nil {
		return nil, fmt.Errorf("failed to create test survey: %w", err)
	}
	return survey, nil
}

// CreateTestCampaign creates an open tester campaign with the given capacity
func (tf *TestFixtures) CreateTestCampaign(adID uint, maxApplicants int, deadline *time.Time) (*models.TesterCampaign, error) {
	campaign := &models.TesterCampaign{
		AdID:          adID,
		Title:         "Home tasting panel",
		Description:   "Try the product at home for two weeks",
		MaxApplicants: maxApplicants,
		Status:        models.TesterCampaignStatusOpen,
		Deadline:      deadline,
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestApplicant creates an applicant in the given status
func (tf *TestFixtures) CreateTestApplicant(campaignID, userID uint, status models.ApplicantStatus) (*models.TesterApplicant, error) {
	applicant := &models.TesterApplicant{
		CampaignID:      campaignID,
		UserID:          userID,
		ApplicationData: datatypes.JSONMap{"reason": "I drink sparkling water daily"},
		Status:          status,
	}
	if err := tf.DB.DB.Create(applicant).Error; err != nil {
		return nil, fmt.Errorf("failed to create test applicant: %w", err)
	}
	return applicant, nil
}
