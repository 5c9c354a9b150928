package repository

import (
	"context"
	"time"

	"github.com/lshigami/learning-insight/internal/model"
	"gorm.io/gorm"
)

type TrackingRepository interface {
	FindTutorial(ctx context.Context, tutorialID uint) (*model.Tutorial, error)
	CountTutorialsInJourney(ctx context.Context, journeyID uint) (int64, error)
	CountCompletedTutorials(ctx context.Context, userID, journeyID uint) (int64, error)

	FindByUserAndTutorial(ctx context.Context, userID, tutorialID uint) (*model.UserActivityTracking, error)
	Create(ctx context.Context, record *model.UserActivityTracking) error
	Update(ctx context.Context, record *model.UserActivityTracking) error
	FindAllByUser(ctx context.Context, userID uint) ([]model.UserActivityTracking, error)
	FindByUserViewedBetween(ctx context.Context, userID uint, start, end time.Time) ([]model.UserActivityTracking, error)
	FindPageByUser(ctx context.Context, userID uint, limit, offset int) ([]model.UserActivityTracking, int64, error)
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) FindTutorial(ctx context.Context, tutorialID uint) (*model.Tutorial, error) {
	var tutorial model.Tutorial
	if err := r.db.WithContext(ctx).First(&tutorial, tutorialID).Error; err != nil {
		return nil, err
	}
	return &tutorial, nil
}

func (r *trackingRepository) CountTutorialsInJourney(ctx context.Context, journeyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Tutorial{}).Where("journey_id = ?", journeyID).Count(&count).Error
	return count, err
}

func (r *trackingRepository) CountCompletedTutorials(ctx context.Context, userID, journeyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserActivityTracking{}).
		Where("user_id = ? AND journey_id = ? AND is_completed = ?", userID, journeyID, true).
		Distinct("tutorial_id").
		Count(&count).Error
	return count, err
}

func (r *trackingRepository) FindByUserAndTutorial(ctx context.Context, userID, tutorialID uint) (*model.UserActivityTracking, error) {
	var record model.UserActivityTracking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tutorial_id = ?", userID, tutorialID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *trackingRepository) Create(ctx context.Context, record *model.UserActivityTracking) error {
	if err := r.db.WithContext(ctx).Omit("Tutorial").Create(record).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *trackingRepository) Update(ctx context.Context, record *model.UserActivityTracking) error {
	return r.db.WithContext(ctx).Omit("Tutorial").Save(record).Error
}

func (r *trackingRepository) FindAllByUser(ctx context.Context, userID uint) ([]model.UserActivityTracking, error) {
	var records []model.UserActivityTracking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

func (r *trackingRepository) FindByUserViewedBetween(ctx context.Context, userID uint, start, end time.Time) ([]model.UserActivityTracking, error) {
	var records []model.UserActivityTracking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND last_viewed_at >= ? AND last_viewed_at <= ?", userID, start, end).
		Find(&records).Error
	return records, err
}

func (r *trackingRepository) FindPageByUser(ctx context.Context, userID uint, limit, offset int) ([]model.UserActivityTracking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.UserActivityTracking{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.UserActivityTracking
	err := r.db.WithContext(ctx).
		Preload("Tutorial").
		Where("user_id = ?", userID).
		Order("last_viewed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, total, err
}
