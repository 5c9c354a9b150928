package model

import (
	"time"
)

// UserActivityTracking records a user's progress through one tutorial.
type UserActivityTracking struct {
	ID                 uint       `gorm:"primarykey" json:"tracking_id"`
	UserID             uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_tracking_user_tutorial"`
	TutorialID         uint       `json:"tutorial_id" gorm:"not null;uniqueIndex:idx_tracking_user_tutorial"`
	JourneyID          *uint      `json:"journey_id,omitempty" gorm:"index"`
	FirstOpenedAt      time.Time  `json:"first_opened_at"`
	LastViewedAt       time.Time  `json:"last_viewed_at" gorm:"index"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	IsCompleted        bool       `json:"is_completed"`
	ProgressPercentage int        `json:"progress_percentage"`
	DurationSeconds    int        `json:"duration_seconds"`
	Tutorial           *Tutorial  `json:"tutorial,omitempty" gorm:"foreignKey:TutorialID"`
}

func (UserActivityTracking) TableName() string { return "user_activity_tracking" }
