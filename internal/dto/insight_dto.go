package dto

import "encoding/json"

// InsightStatsDTO is the feature vector sent to the insight provider.
type InsightStatsDTO struct {
	AvgStudyDurationHours  float64 `json:"avg_study_duration_hours"`
	TotalTutorialCompleted int     `json:"total_tutorial_completed"`
	TotalStudyDays         int     `json:"total_study_days"`
	ConsistencyScore       float64 `json:"consistency_score"`
	AvgExamScore           float64 `json:"avg_exam_score"`
}

type InsightProfileDTO struct {
	Name string `json:"name"`
}

type InsightRequestDTO struct {
	UserID      *uint              `json:"userId"`
	Stats       *InsightStatsDTO   `json:"stats"`
	UserProfile *InsightProfileDTO `json:"userProfile"`
}

type InsightResponseDTO struct {
	Provider string          `json:"provider"`
	UserID   uint            `json:"user_id"`
	Stats    InsightStatsDTO `json:"stats"`
	Insight  json.RawMessage `json:"insight"`
}

type InsightHealthDTO struct {
	Status          string `json:"status"`
	Provider        string `json:"provider"`
	ServiceURL      string `json:"service_url,omitempty"`
	TokenConfigured bool   `json:"token_configured"`
}
