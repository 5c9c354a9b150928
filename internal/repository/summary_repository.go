package repository

import (
	"context"

	"github.com/lshigami/learning-insight/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SummaryRepository interface {
	Upsert(ctx context.Context, summary *model.UserProgressSummary) error
	FindByUserID(ctx context.Context, userID uint) (*model.UserProgressSummary, error)
}

type summaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Upsert(ctx context.Context, summary *model.UserProgressSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(summary).Error
}

func (r *summaryRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProgressSummary, error) {
	var summary model.UserProgressSummary
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
