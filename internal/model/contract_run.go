package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// ContractRun records one billing attempt of one contract on one calendar date.
// The unique index on (contract_id, run_date) is what makes billing idempotent:
// a FAILED run occupies the slot as well.
type ContractRun struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContractID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contract_run_date,priority:1"`
	RunDate    time.Time  `gorm:"type:date;not null;uniqueIndex:idx_contract_run_date,priority:2;index"`
	Status     string     `gorm:"type:varchar(10);not null"`
	Message    string     `gorm:"type:text"`
	DocumentID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time

	Contract *Contract      `gorm:"foreignKey:ContractID;constraint:OnDelete:RESTRICT"`
	Document *SalesDocument `gorm:"foreignKey:DocumentID;constraint:OnDelete:RESTRICT"`
}

func (r *ContractRun) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

func (r *ContractRun) Succeeded() bool { return r.Status == RunStatusSuccess }
