package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxRate is a VAT rate referenced by items, contract lines and document lines.
// Code is unique case-insensitively (functional index, see infra schema patches).
// Rates that were used once are deactivated, never deleted.
type TaxRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code      string          `gorm:"type:varchar(20);not null"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,4);not null"` // 0.19 = 19 %
	IsActive  bool            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *TaxRate) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Validate checks the code and the 0..1 range of Rate.
func (t *TaxRate) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return NewValidationError("code", "Code darf nicht leer sein")
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("rate", "Steuersatz muss zwischen 0 und 1 liegen")
	}
	return nil
}

// IsZero reports whether the rate is exactly 0 %.
func (t *TaxRate) IsZero() bool { return t.Rate.IsZero() }
