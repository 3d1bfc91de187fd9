package dto

// ApplyTesterRequest carries an application to the ad's open tester campaign
type ApplyTesterRequest struct {
	AdID            uint           `json:"-"`
	UserID          uint           `json:"-"`
	ApplicationData map[string]any `json:"application_data,omitempty"`
}

// TesterApplicantItem represents an application
type TesterApplicantItem struct {
	ID              uint           `json:"id"`
	CampaignID      uint           `json:"campaign_id"`
	UserID          uint           `json:"user_id"`
	ApplicationData map[string]any `json:"application_data"`
	Status          string         `json:"status"`
	CreatedAt       string         `json:"created_at"`
}

// ApplyTesterResponse returns the created application
type ApplyTesterResponse struct {
	Message     string              `json:"message"`
	Applicant   TesterApplicantItem `json:"applicant"`
	SideEffects []SideEffect        `json:"side_effects"`
}

// SubmitTesterReportRequest carries a tester report.
// ApplicantID is optional; the user's latest selected application is used otherwise.
type SubmitTesterReportRequest struct {
	UserID      uint     `json:"-"`
	ApplicantID *uint    `json:"applicant_id,omitempty" validate:"omitempty,gt=0"`
	Content     string   `json:"content" validate:"required,max=5000"`
	MediaURLs   []string `json:"media_urls,omitempty" validate:"omitempty,max=10,dive,required,max=2048"`
}

// TesterReportItem represents a filed report
type TesterReportItem struct {
	ID          uint     `json:"id"`
	ApplicantID uint     `json:"applicant_id"`
	Content     string   `json:"content"`
	MediaURLs   []string `json:"media_urls"`
	CreatedAt   string   `json:"created_at"`
}

// SubmitTesterReportResponse returns the report and the completed application
type SubmitTesterReportResponse struct {
	Message   string              `json:"message"`
	Report    TesterReportItem    `json:"report"`
	Applicant TesterApplicantItem `json:"applicant"`
}

// SelectApplicantRequest moves a pending applicant to selected
type SelectApplicantRequest struct {
	AdvertiserID uint `json:"-"`
	ApplicantID  uint `json:"-"`
}

// SelectApplicantResponse returns the selected application
type SelectApplicantResponse struct {
	Message     string              `json:"message"`
	Applicant   TesterApplicantItem `json:"applicant"`
	SideEffects []SideEffect        `json:"side_effects"`
}

// TesterCampaignItem represents a campaign with its derived applicant count
type TesterCampaignItem struct {
	ID             uint    `json:"id"`
	AdID           uint    `json:"ad_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	MaxApplicants  int     `json:"max_applicants"`
	Applied        int64   `json:"applied"`
	RemainingSpots int64   `json:"remaining_spots"`
	Status         string  `json:"status"`
	Deadline       *string `json:"deadline,omitempty"`
}

// GetTesterCampaignResponse returns the open campaign of an ad
type GetTesterCampaignResponse struct {
	Message  string             `json:"message"`
	Campaign TesterCampaignItem `json:"campaign"`
}

// ExportApplicantsRequest identifies the campaign to export
type ExportApplicantsRequest struct {
	AdvertiserID uint `json:"-"`
	CampaignID   uint `json:"-"`
}

// ExportApplicantsResponse carries the generated workbook
type ExportApplicantsResponse struct {
	FileName string
	Content  []byte
	Rows     int
}

// ListMyApplicationsResponse lists the user's applications
type ListMyApplicationsResponse struct {
	Message      string                `json:"message"`
	Applications []TesterApplicantItem `json:"applications"`
}
