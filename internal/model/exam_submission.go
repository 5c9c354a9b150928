package model

import (
	"time"
)

type ExamSubmission struct {
	ID             uint  `gorm:"primarykey" json:"submission_id"`
	RegistrationID *uint `json:"registration_id,omitempty" gorm:"uniqueIndex"`
	UserID         uint  `json:"user_id" gorm:"not null;index"`
	ExamID         uint  `json:"exam_id" gorm:"not null;index"`
	Score          int   `json:"score" gorm:"not null"`
	IsPassed       bool  `json:"is_passed"`
	IsLate         bool  `json:"is_late"`
	// StartTime, SubmitTime and DurationSeconds come from the server clock.
	StartTime       time.Time `json:"start_time"`
	SubmitTime      time.Time `json:"submit_time"`
	DurationSeconds int       `json:"duration_seconds"`
	// Client reported values, kept for auditing only.
	ClientStartTime       *time.Time   `json:"client_start_time,omitempty"`
	ClientDurationSeconds *int         `json:"client_duration_seconds,omitempty"`
	Answers               []ExamAnswer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt             time.Time    `json:"created_at"`
}

func (ExamSubmission) TableName() string { return "exam_submissions" }
