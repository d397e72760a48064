package repository

import (
	"context"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRunRepository interface {
	// CreateTx inserts a run. A second run for the same (contract, run_date)
	// fails with gorm.ErrDuplicatedKey.
	CreateTx(ctx context.Context, tx *gorm.DB, run *model.ContractRun) error
	FindByContractAndDate(ctx context.Context, contractID uuid.UUID, runDate time.Time) (*model.ContractRun, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractRun, error)
	ListByDate(ctx context.Context, runDate time.Time) ([]model.ContractRun, error)
}

type contractRunRepo struct{ db *gorm.DB }

func NewContractRunRepository(db *gorm.DB) ContractRunRepository { return &contractRunRepo{db: db} }

func (r *contractRunRepo) CreateTx(ctx context.Context, tx *gorm.DB, run *model.ContractRun) error {
	run.RunDate = model.DateOf(run.RunDate)
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(run).Error
}

func (r *contractRunRepo) FindByContractAndDate(ctx context.Context, contractID uuid.UUID, runDate time.Time) (*model.ContractRun, error) {
	var run model.ContractRun
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND run_date = ?", contractID, model.DateOf(runDate)).
		First(&run).Error
	return &run, err
}

func (r *contractRunRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractRun, error) {
	var runs []model.ContractRun
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("run_date DESC").
		Find(&runs).Error
	return runs, err
}

func (r *contractRunRepo) ListByDate(ctx context.Context, runDate time.Time) ([]model.ContractRun, error) {
	var runs []model.ContractRun
	err := r.db.WithContext(ctx).
		Where("run_date = ?", model.DateOf(runDate)).
		Order("created_at, id").
		Find(&runs).Error
	return runs, err
}
