package model

import (
	"time"
)

// ExamRegistration binds one user to one exam and anchors the session timer.
// The (user_id, exam_id) pair is unique in the database.
type ExamRegistration struct {
	ID               uint       `gorm:"primarykey" json:"registration_id"`
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_registration_user_exam"`
	ExamID           uint       `json:"exam_id" gorm:"not null;uniqueIndex:idx_registration_user_exam"`
	JourneyID        uint       `json:"journey_id" gorm:"index"`
	PrerequisitesMet bool       `json:"prerequisites_met"`
	RegisteredAt     time.Time  `json:"registered_at" gorm:"not null"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (ExamRegistration) TableName() string { return "exam_registrations" }
