package repository

import (
	"context"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxRateRepository interface {
	Create(ctx context.Context, t *model.TaxRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error)
	// FindByCode matches case-insensitively.
	FindByCode(ctx context.Context, code string) (*model.TaxRate, error)
	// FindFirstActiveZero returns any active 0 % rate, ordered by code.
	FindFirstActiveZero(ctx context.Context) (*model.TaxRate, error)
	List(ctx context.Context, includeInactive bool) ([]model.TaxRate, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type taxRateRepo struct{ db *gorm.DB }

func NewTaxRateRepository(db *gorm.DB) TaxRateRepository { return &taxRateRepo{db: db} }

func (r *taxRateRepo) Create(ctx context.Context, t *model.TaxRate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taxRateRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error) {
	var t model.TaxRate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	return &t, err
}

func (r *taxRateRepo) FindByCode(ctx context.Context, code string) (*model.TaxRate, error) {
	var t model.TaxRate
	err := r.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&t).Error
	return &t, err
}

func (r *taxRateRepo) FindFirstActiveZero(ctx context.Context) (*model.TaxRate, error) {
	var t model.TaxRate
	err := r.db.WithContext(ctx).
		Where("rate = 0 AND is_active = ?", true).
		Order("code").
		First(&t).Error
	return &t, err
}

func (r *taxRateRepo) List(ctx context.Context, includeInactive bool) ([]model.TaxRate, error) {
	var rates []model.TaxRate
	q := r.db.WithContext(ctx).Order("rate DESC, code")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rates).Error
	return rates, err
}

func (r *taxRateRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.TaxRate{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
