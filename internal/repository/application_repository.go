package repository

import (
	"context"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

// Create records an application once per (user, job); repeats are ignored.
func (r *ApplicationRepository) Create(ctx context.Context, a *model.Application) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(a).Error
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}
