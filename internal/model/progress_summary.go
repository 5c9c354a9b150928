package model

import (
	"time"
)

// UserProgressSummary is a denormalized per-user aggregate recomputed from the
// raw activity and submission rows.
type UserProgressSummary struct {
	UserID                   uint      `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	TotalTutorialAccessed    int       `json:"total_tutorial_accessed"`
	TotalTutorialCompleted   int       `json:"total_tutorial_completed"`
	CompletionRate           float64   `json:"completion_rate"`
	TotalJourneysCompleted   int       `json:"total_journeys_completed"`
	TotalExamsTaken          int       `json:"total_exams_taken"`
	TotalExamsPassed         int       `json:"total_exams_passed"`
	AvgStudyDurationHours    float64   `json:"avg_study_duration_hours"`
	MedianStudyDurationHours float64   `json:"median_study_duration_hours"`
	MaxStudyDurationHours    float64   `json:"max_study_duration_hours"`
	MinStudyDurationHours    float64   `json:"min_study_duration_hours"`
	TotalStudyDays           int       `json:"total_study_days"`
	AvgTutorialPerDay        float64   `json:"avg_tutorial_per_day"`
	StdTutorialPerDay        float64   `json:"std_tutorial_per_day"`
	MaxTutorialInDay         int       `json:"max_tutorial_in_day"`
	AvgExamScore             float64   `json:"avg_exam_score"`
	ExamPassRate             float64   `json:"exam_pass_rate"`
	LastUpdated              time.Time `json:"last_updated"`
}

func (UserProgressSummary) TableName() string { return "user_progress_summary" }
