package dto

import "time"

type TrackTutorialDTO struct {
	Action string `json:"action" binding:"required,oneof=start complete"`
	UserID *uint  `json:"user_id"`
}

type HeartbeatDTO struct {
	TutorialID uint  `json:"tutorialId" binding:"required"`
	JourneyID  uint  `json:"journeyId" binding:"required"`
	UserID     *uint `json:"user_id"`
}

type UpdateSummaryDTO struct {
	UserID *uint `json:"user_id"`
}

type ActivityDTO struct {
	TrackingID         uint       `json:"tracking_id"`
	TutorialID         uint       `json:"tutorial_id"`
	TutorialTitle      string     `json:"tutorial_title,omitempty"`
	JourneyID          *uint      `json:"journey_id,omitempty"`
	FirstOpenedAt      time.Time  `json:"first_opened_at"`
	LastViewedAt       time.Time  `json:"last_viewed_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	IsCompleted        bool       `json:"is_completed"`
	ProgressPercentage int        `json:"progress_percentage"`
	DurationSeconds    int        `json:"duration_seconds"`
}

type TrackResultDTO struct {
	AlreadyCompleted bool         `json:"already_completed"`
	Activity         *ActivityDTO `json:"activity,omitempty"`
}

type PaginationDTO struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

type ActivityPageDTO struct {
	Activities []ActivityDTO `json:"activities"`
	Pagination PaginationDTO `json:"pagination"`
}

type TrackingSummaryDTO struct {
	Completed            int       `json:"completed"`
	InProgress           int       `json:"inProgress"`
	TotalDurationSeconds int       `json:"totalDurationSeconds"`
	TotalDurationHours   float64   `json:"totalDurationHours"`
	RangeStart           time.Time `json:"rangeStart"`
	RangeEnd             time.Time `json:"rangeEnd"`
}
