package model

import (
	"time"
)

type ExamAnswer struct {
	ID             uint      `gorm:"primarykey" json:"answer_id"`
	SubmissionID   uint      `json:"submission_id" gorm:"not null;index"`
	QuestionID     *uint     `json:"question_id,omitempty" gorm:"index"` // nil when the number matched no question
	QuestionNo     int       `json:"question_no" gorm:"not null"`
	SelectedOption string    `json:"selected_option" gorm:"type:text"`
	IsCorrect      bool      `json:"is_correct"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ExamAnswer) TableName() string { return "exam_answers" }
