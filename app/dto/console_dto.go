package dto

// AdvertiserConsoleRequest scopes the console to the advertiser's ads, or to one of them when AdID is set
type AdvertiserConsoleRequest struct {
	AdvertiserID uint `json:"-"`
	AdID         uint `query:"ad_id" validate:"omitempty,gt=0"`
}

// ConsoleMetrics summarizes the advertiser's ads and participation waiting for moderation
type ConsoleMetrics struct {
	TotalAds        int64 `json:"total_ads"`
	ActiveAds       int64 `json:"active_ads"`
	PendingComments int64 `json:"pending_comments"`
	PendingUGC      int64 `json:"pending_ugc"`
	OpenCampaigns   int64 `json:"open_campaigns"`
}

// AdvertiserConsoleResponse is the moderation overview of an advertiser.
// Comments and UGC include every status, newest first.
type AdvertiserConsoleResponse struct {
	Message        string               `json:"message"`
	Metrics        ConsoleMetrics       `json:"metrics"`
	Ads            []AdItem             `json:"ads"`
	RecentComments []CommentItem        `json:"recent_comments"`
	RecentUGC      []UGCItem            `json:"recent_ugc"`
	Campaigns      []TesterCampaignItem `json:"campaigns"`
}

// ListCampaignApplicantsRequest lists the applicants of a campaign owned by the advertiser
type ListCampaignApplicantsRequest struct {
	AdvertiserID uint   `json:"-"`
	CampaignID   uint   `json:"-"`
	Status       string `query:"status" validate:"omitempty,oneof=pending selected rejected completed"`
}

// ListCampaignApplicantsResponse returns a campaign with its applicants, oldest first
type ListCampaignApplicantsResponse struct {
	Message    string                `json:"message"`
	Campaign   TesterCampaignItem    `json:"campaign"`
	Applicants []TesterApplicantItem `json:"applicants"`
}
