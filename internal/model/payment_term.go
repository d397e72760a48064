package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTerm (Zahlungsbedingung) derives due dates from the issue date.
// DiscountDays/DiscountPercent describe an optional early-payment discount (Skonto).
type PaymentTerm struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name            string          `gorm:"type:varchar(100);not null"`
	NetDays         int             `gorm:"not null"`
	DiscountDays    int             `gorm:"not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *PaymentTerm) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// CalculateDueDate returns issueDate + NetDays.
func (p *PaymentTerm) CalculateDueDate(issueDate time.Time) time.Time {
	return DateOf(issueDate).AddDate(0, 0, p.NetDays)
}

// DiscountDueDate returns the last day the Skonto applies, or nil without Skonto.
func (p *PaymentTerm) DiscountDueDate(issueDate time.Time) *time.Time {
	if p.DiscountDays <= 0 || !p.DiscountPercent.IsPositive() {
		return nil
	}
	d := DateOf(issueDate).AddDate(0, 0, p.DiscountDays)
	return &d
}

func (p *PaymentTerm) Validate() error {
	if p.NetDays < 0 {
		return NewValidationError("net_days", "Zahlungsziel darf nicht negativ sein")
	}
	if p.DiscountDays < 0 || p.DiscountDays > p.NetDays {
		return NewValidationError("discount_days", "Skontofrist muss zwischen 0 und dem Zahlungsziel liegen")
	}
	return nil
}
