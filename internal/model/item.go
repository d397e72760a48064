package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a catalog article. Its price and tax rate are copied onto document
// lines at assignment time; editing an Item never touches existing lines.
type Item struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ArticleNo      string          `gorm:"type:varchar(40);index;not null"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	NetPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRateID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	IsDiscountable bool            `gorm:"not null"`
	IsActive       bool            `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	TaxRate *TaxRate `gorm:"foreignKey:TaxRateID;constraint:OnDelete:RESTRICT"`
}

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i *Item) Validate() error {
	if i.Name == "" {
		return NewValidationError("name", "Bezeichnung darf nicht leer sein")
	}
	if i.NetPrice.IsNegative() {
		return NewValidationError("net_price", "Preis darf nicht negativ sein")
	}
	if i.TaxRateID == uuid.Nil {
		return NewValidationError("tax_rate_id", "Steuersatz fehlt")
	}
	return nil
}
