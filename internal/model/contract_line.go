package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractLine is a template position of a Contract. Billing copies its values
// into a new SalesDocumentLine; the document never points back at the template.
type ContractLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_contract_line_position,priority:1"`
	PositionNo     int             `gorm:"not null;uniqueIndex:idx_contract_line_position,priority:2"`
	Description    string          `gorm:"type:text;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPriceNet   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRateID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	IsDiscountable bool            `gorm:"not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"` // fraction, 0.1 = 10 %
	CostType1      *string         `gorm:"type:varchar(50)"`
	CostType2      *string         `gorm:"type:varchar(50)"`

	TaxRate *TaxRate `gorm:"foreignKey:TaxRateID;constraint:OnDelete:RESTRICT"`
}

func (l *ContractLine) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (l *ContractLine) Validate() error {
	if l.PositionNo <= 0 {
		return NewValidationError("lines.position_no", "Positionsnummer muss größer 0 sein")
	}
	if l.Description == "" {
		return NewValidationError("lines.description", "Beschreibung darf nicht leer sein")
	}
	if !l.Quantity.IsPositive() {
		return NewValidationError("lines.quantity", "Menge muss größer 0 sein")
	}
	if l.UnitPriceNet.IsNegative() {
		return NewValidationError("lines.unit_price_net", "Preis darf nicht negativ sein")
	}
	if l.TaxRateID == uuid.Nil {
		return NewValidationError("lines.tax_rate_id", "Steuersatz fehlt")
	}
	if l.Discount.IsNegative() || l.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("lines.discount", "Rabatt muss zwischen 0 und 1 liegen")
	}
	return nil
}
