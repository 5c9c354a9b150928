package repository

import (
	"context"

	"github.com/lshigami/learning-insight/internal/model"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.ExamSubmission) error
	CreateAnswers(ctx context.Context, answers []model.ExamAnswer) error
	FindAllByUserAndExam(ctx context.Context, userID, examID uint) ([]model.ExamSubmission, error)
	FindAllByUser(ctx context.Context, userID uint) ([]model.ExamSubmission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.ExamSubmission) error {
	// Answers are written separately so a failure there leaves the submission row intact.
	return r.db.WithContext(ctx).Omit("Answers").Create(submission).Error
}

func (r *submissionRepository) CreateAnswers(ctx context.Context, answers []model.ExamAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(answers, 100).Error
}

func (r *submissionRepository) FindAllByUserAndExam(ctx context.Context, userID, examID uint) ([]model.ExamSubmission, error) {
	var submissions []model.ExamSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		Order("submit_time DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) FindAllByUser(ctx context.Context, userID uint) ([]model.ExamSubmission, error) {
	var submissions []model.ExamSubmission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&submissions).Error
	return submissions, err
}
