package repository

import (
	"context"
	"time"

	"github.com/lshigami/learning-insight/internal/model"
	"gorm.io/gorm"
)

type RegistrationRepository interface {
	FindByUserAndExam(ctx context.Context, userID, examID uint) (*model.ExamRegistration, error)
	// Create returns ErrDuplicate when (user, exam) is already registered.
	Create(ctx context.Context, registration *model.ExamRegistration) error
	// MarkStarted sets started_at only if it is still null and reports
	// whether this call set it.
	MarkStarted(ctx context.Context, id uint, at time.Time) (bool, error)
	// MarkFinished sets finished_at only if it is still null and reports
	// whether this call set it.
	MarkFinished(ctx context.Context, id uint, at time.Time) (bool, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) FindByUserAndExam(ctx context.Context, userID, examID uint) (*model.ExamRegistration, error) {
	var registration model.ExamRegistration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) Create(ctx context.Context, registration *model.ExamRegistration) error {
	if err := r.db.WithContext(ctx).Create(registration).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *registrationRepository) MarkStarted(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ExamRegistration{}).
		Where("id = ? AND started_at IS NULL", id).
		Update("started_at", at)
	return res.RowsAffected == 1, res.Error
}

func (r *registrationRepository) MarkFinished(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ExamRegistration{}).
		Where("id = ? AND finished_at IS NULL", id).
		Update("finished_at", at)
	return res.RowsAffected == 1, res.Error
}
