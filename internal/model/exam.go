package model

import (
	"time"

	"gorm.io/gorm"
)

// Exam is the final exam of a learning journey.
type Exam struct {
	ID              uint           `gorm:"primarykey" json:"exam_id"`
	JourneyID       uint           `json:"journey_id" gorm:"not null;index"`
	Title           string         `json:"title" gorm:"not null"`
	DurationSeconds int            `json:"duration_seconds" gorm:"not null"`
	PassingScore    *int           `json:"passing_score,omitempty"` // 0-100, nil means the configured default
	Questions       []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Exam) TableName() string { return "final_exams" }
