package repository

import (
	"context"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	List(ctx context.Context, filter dto.ActivityFilter) ([]model.Activity, error)
}

type activityRepo struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) ActivityRepository { return &activityRepo{db: db} }

func (r *activityRepo) Create(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepo) List(ctx context.Context, filter dto.ActivityFilter) ([]model.Activity, error) {
	var out []model.Activity
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Domain != "" {
		q = q.Where("domain = ?", filter.Domain)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := q.Limit(limit).Find(&out).Error
	return out, err
}
