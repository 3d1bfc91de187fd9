package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/usbest/usbest-backend/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SurveyStatus represents the status of a survey
type SurveyStatus string

const (
	SurveyStatusActive SurveyStatus = "active"
	SurveyStatusPaused SurveyStatus = "paused"
	SurveyStatusClosed SurveyStatus = "closed"
)

// Valid checks if the status is valid
func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyStatusActive, SurveyStatusPaused, SurveyStatusClosed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SurveyStatus
func (s *SurveyStatus) Scan(value any) error {
	v, err := scanString(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into SurveyStatus", value)
	}
	*s = SurveyStatus(v)
	return nil
}

// Value implements the driver.Valuer interface for SurveyStatus
func (s SurveyStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SurveyStatus: %s", s)
	}
	return string(s), nil
}

// QuestionType is the answer shape a survey question expects
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeText     QuestionType = "text"
)

// Survey belongs to an ad; only an active survey accepts answers
type Survey struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	AdID        uint         `gorm:"not null;index:idx_surveys_ad_id" json:"ad_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	Status      SurveyStatus `gorm:"type:varchar(20);not null;default:'active';index:idx_surveys_status" json:"status"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`

	Questions []SurveyQuestion `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
}

func (Survey) TableName() string {
	return "surveys"
}

// BeforeCreate is called before creating a new record
func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = SurveyStatusActive
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// SurveyQuestion is one question of a survey
type SurveyQuestion struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SurveyID     uint           `gorm:"not null;index:idx_survey_questions_survey_id" json:"survey_id"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	QuestionType QuestionType   `gorm:"type:varchar(20);not null" json:"question_type"`
	Options      datatypes.JSON `json:"options,omitempty"`
	OrderIndex   int            `gorm:"not null;default:0" json:"order_index"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}

// BeforeCreate is called before creating a new record
func (q *SurveyQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	return nil
}

// SurveyAnswer is a user's answer to one question, unique per (survey, question, user)
type SurveyAnswer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SurveyID      uint           `gorm:"not null;uniqueIndex:uk_survey_answers_survey_question_user,priority:1" json:"survey_id"`
	QuestionID    uint           `gorm:"not null;uniqueIndex:uk_survey_answers_survey_question_user,priority:2" json:"question_id"`
	UserID        uint           `gorm:"not null;uniqueIndex:uk_survey_answers_survey_question_user,priority:3;index:idx_survey_answers_user_id" json:"user_id"`
	AnswerText    *string        `gorm:"type:text" json:"answer_text,omitempty"`
	AnswerOptions datatypes.JSON `json:"answer_options,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (SurveyAnswer) TableName() string {
	return "survey_answers"
}

// BeforeCreate is called before creating a new record
func (a *SurveyAnswer) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	return nil
}

// SurveyAnswerFilter represents filter criteria for survey answers
type SurveyAnswerFilter struct {
	SurveyID   *uint `json:"survey_id,omitempty"`
	QuestionID *uint `json:"question_id,omitempty"`
	UserID     *uint `json:"user_id,omitempty"`
}

// SurveyFilter represents filter criteria for surveys
type SurveyFilter struct {
	ID     *uint         `json:"id,omitempty"`
	AdID   *uint         `json:"ad_id,omitempty"`
	Status *SurveyStatus `json:"status,omitempty"`
}
