package repository

import (
	"context"

	"github.com/lshigami/learning-insight/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	FindByID(ctx context.Context, id uint) (*model.Exam, error)
	FindByJourneyID(ctx context.Context, journeyID uint) (*model.Exam, error)
	// FindQuestions returns the exam's questions ordered by question number,
	// including the answer key.
	FindQuestions(ctx context.Context, examID uint) ([]model.ExamQuestion, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	// Questions are inserted along with the exam through the association.
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByJourneyID(ctx context.Context, journeyID uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).Where("journey_id = ?", journeyID).Order("id ASC").First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindQuestions(ctx context.Context, examID uint) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Order("question_no ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
