package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ExamQuestion struct {
	ID            uint           `gorm:"primarykey" json:"question_id"`
	ExamID        uint           `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_question_no"`
	QuestionNo    int            `json:"question_no" gorm:"not null;uniqueIndex:idx_exam_question_no"`
	QuestionText  string         `json:"question_text" gorm:"type:text;not null"`
	OptionA       string         `json:"option_a" gorm:"type:text"`
	OptionB       string         `json:"option_b" gorm:"type:text"`
	OptionC       string         `json:"option_c" gorm:"type:text"`
	OptionD       string         `json:"option_d" gorm:"type:text"`
	CorrectAnswer string         `json:"-" gorm:"size:1;not null"` // "A".."D", never serialized
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// OptionText returns the text of the choice with the given label (A-D, case
// insensitive) and whether the label exists.
func (q *ExamQuestion) OptionText(label string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "A":
		return q.OptionA, true
	case "B":
		return q.OptionB, true
	case "C":
		return q.OptionC, true
	case "D":
		return q.OptionD, true
	}
	return "", false
}

// CorrectOptionText is the text a submitted answer must equal to be correct.
func (q *ExamQuestion) CorrectOptionText() (string, bool) {
	return q.OptionText(q.CorrectAnswer)
}
