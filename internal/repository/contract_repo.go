package repository

import (
	"context"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository interface {
	// Create inserts the contract and its Lines.
	Create(ctx context.Context, c *model.Contract) error
	// FindByID preloads Lines ordered by position_no.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	// FindForBillingTx loads a contract inside tx with Lines, their TaxRate and
	// the PaymentTerm.
	FindForBillingTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Contract, error)
	// ListDue returns active contracts with next_run_date <= today that have
	// not ended before today.
	ListDue(ctx context.Context, today time.Time) ([]model.Contract, error)
	List(ctx context.Context, filter dto.ContractFilter) ([]model.Contract, int64, error)
	// UpdateScheduleTx writes last_run_date and next_run_date only.
	UpdateScheduleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, lastRun, nextRun time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type contractRepo struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) DB() *gorm.DB { return r.db }

func (r *contractRepo) Create(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := c.Lines
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ContractID = c.ID
		}
		if len(lines) > 0 {
			if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
				return err
			}
		}
		c.Lines = lines
		return nil
	})
}

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("position_no") }

func (r *contractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).Preload("Lines", orderedLines).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *contractRepo) FindForBillingTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := conn(ctx, r.db, tx).
		Preload("Lines", orderedLines).
		Preload("Lines.TaxRate").
		Preload("PaymentTerm").
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *contractRepo) ListDue(ctx context.Context, today time.Time) ([]model.Contract, error) {
	today = model.DateOf(today)
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_run_date <= ?", true, today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("next_run_date, id").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepo) List(ctx context.Context, filter dto.ContractFilter) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Contract{})
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	switch filter.Status {
	case "inactive":
		q = q.Where("is_active = ?", false)
	case "all":
	default:
		q = q.Where("is_active = ?", true)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := paginate(q, filter.Page, filter.Limit).
		Preload("Lines", orderedLines).
		Order("name, id").
		Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepo) UpdateScheduleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, lastRun, nextRun time.Time) error {
	res := conn(ctx, r.db, tx).Model(&model.Contract{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_run_date": model.DateOf(lastRun),
		"next_run_date": model.DateOf(nextRun),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contractRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
