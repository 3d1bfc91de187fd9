package models

// All lists every persisted model in migration order
func All() []any {
	return []any{
		&Ad{},
		&Comment{},
		&UGCItem{},
		&Survey{},
		&SurveyQuestion{},
		&SurveyAnswer{},
		&TesterCampaign{},
		&TesterApplicant{},
		&TesterReport{},
		&Reward{},
		&AdExposure{},
		&AuditLog{},
	}
}
