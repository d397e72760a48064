package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interval is the billing cadence of a Contract.
type Interval string

const (
	IntervalMonthly    Interval = "MONTHLY"
	IntervalQuarterly  Interval = "QUARTERLY"
	IntervalSemiAnnual Interval = "SEMI_ANNUAL"
	IntervalAnnual     Interval = "ANNUAL"
)

// Months returns the number of calendar months one interval spans, 0 if unknown.
func (i Interval) Months() int {
	switch i {
	case IntervalMonthly:
		return 1
	case IntervalQuarterly:
		return 3
	case IntervalSemiAnnual:
		return 6
	case IntervalAnnual:
		return 12
	default:
		return 0
	}
}

func (i Interval) Valid() bool { return i.Months() > 0 }

// Contract is a recurring billing agreement (Vertrag). NextRunDate and
// LastRunDate are written only by the billing engine. Contracts are disabled via
// IsActive and never deleted while ContractRuns reference them (FK RESTRICT).
type Contract struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	Name          string     `gorm:"type:varchar(200);not null"`
	DocumentType  string     `gorm:"type:varchar(30);not null"`
	PaymentTermID uuid.UUID  `gorm:"type:uuid;not null"`
	Currency      string     `gorm:"type:varchar(3);not null"`
	Interval      Interval   `gorm:"type:varchar(20);not null"`
	StartDate     time.Time  `gorm:"type:date;not null"`
	EndDate       *time.Time `gorm:"type:date"`
	NextRunDate   time.Time  `gorm:"type:date;not null;index"`
	LastRunDate   *time.Time `gorm:"type:date"`
	IsActive      bool       `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Company     *Company       `gorm:"foreignKey:CompanyID;constraint:OnDelete:RESTRICT"`
	Customer    *Customer      `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	PaymentTerm *PaymentTerm   `gorm:"foreignKey:PaymentTermID;constraint:OnDelete:RESTRICT"`
	Lines       []ContractLine `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

func (c *Contract) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Validate enforces the date invariants before anything is written.
func (c *Contract) Validate() error {
	if c.Name == "" {
		return NewValidationError("name", "Bezeichnung darf nicht leer sein")
	}
	if !c.Interval.Valid() {
		return NewValidationError("interval", "Unbekanntes Abrechnungsintervall")
	}
	if !IsDocumentType(c.DocumentType) {
		return NewValidationError("document_type", "Unbekannte Belegart")
	}
	if c.StartDate.IsZero() {
		return NewValidationError("start_date", "Startdatum fehlt")
	}
	if c.EndDate != nil && DateOf(*c.EndDate).Before(DateOf(c.StartDate)) {
		return NewValidationError("end_date", "Enddatum liegt vor dem Startdatum")
	}
	if DateOf(c.NextRunDate).Before(DateOf(c.StartDate)) {
		return NewValidationError("next_run_date", "Nächste Abrechnung liegt vor dem Startdatum")
	}
	seen := make(map[int]bool, len(c.Lines))
	for i := range c.Lines {
		if err := c.Lines[i].Validate(); err != nil {
			return err
		}
		if seen[c.Lines[i].PositionNo] {
			return NewValidationError("lines.position_no", "Positionsnummer ist doppelt vergeben")
		}
		seen[c.Lines[i].PositionNo] = true
	}
	return nil
}

// IsDue reports whether the contract must be billed on today: active, schedule
// reached and not ended before today.
func (c *Contract) IsDue(today time.Time) bool {
	today = DateOf(today)
	if !c.IsActive {
		return false
	}
	if DateOf(c.NextRunDate).After(today) {
		return false
	}
	if c.EndDate != nil && DateOf(*c.EndDate).Before(today) {
		return false
	}
	return true
}

// AdvanceNextRunDate returns NextRunDate moved forward by one interval,
// clamped to the end of the target month.
func (c *Contract) AdvanceNextRunDate() time.Time {
	return AddMonthsClamped(DateOf(c.NextRunDate), c.Interval.Months())
}
