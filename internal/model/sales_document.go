package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Document types (Belegarten) and their number prefixes.
const (
	DocumentTypeInvoice           = "INVOICE"
	DocumentTypeQuote             = "QUOTE"
	DocumentTypeOrderConfirmation = "ORDER_CONFIRMATION"
	DocumentTypeCreditNote        = "CREDIT_NOTE"
)

var documentPrefixes = map[string]string{
	DocumentTypeInvoice:           "RE",
	DocumentTypeQuote:             "AN",
	DocumentTypeOrderConfirmation: "AB",
	DocumentTypeCreditNote:        "GS",
}

func IsDocumentType(t string) bool {
	_, ok := documentPrefixes[t]
	return ok
}

// DocumentPrefix returns the number prefix of a document type ("RE" for invoices).
func DocumentPrefix(t string) string { return documentPrefixes[t] }

// Document status: DRAFT documents are editable, everything else is locked.
const (
	DocumentStatusDraft     = "DRAFT"
	DocumentStatusIssued    = "ISSUED"
	DocumentStatusPaid      = "PAID"
	DocumentStatusCancelled = "CANCELLED"
)

// SalesDocument is an invoice, quote, order confirmation or credit note.
// Totals are persisted and only written by the calculation service.
type SalesDocument struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;index;not null;uniqueIndex:idx_document_number,priority:1"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	DocumentType  string          `gorm:"type:varchar(30);not null"`
	Number        string          `gorm:"type:varchar(30);uniqueIndex:idx_document_number,priority:2;not null"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	Subject       string          `gorm:"type:varchar(200)"`
	IssueDate     time.Time       `gorm:"type:date;not null"`
	DueDate       *time.Time      `gorm:"type:date"`
	PaymentTermID *uuid.UUID      `gorm:"type:uuid"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	ContractID    *uuid.UUID      `gorm:"type:uuid;index"`
	TotalNet      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTax      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalGross    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PDFPath       *string         `gorm:"column:pdf_path"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	CompanyRef  *Company            `gorm:"foreignKey:CompanyID;constraint:OnDelete:RESTRICT"`
	Customer    *Customer           `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	PaymentTerm *PaymentTerm        `gorm:"foreignKey:PaymentTermID;constraint:OnDelete:RESTRICT"`
	Lines       []SalesDocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

func (d *SalesDocument) BeforeCreate(_ *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

func (d *SalesDocument) IsDraft() bool { return d.Status == DocumentStatusDraft }

// NextPositionNo returns the position number for a line appended to the document.
func (d *SalesDocument) NextPositionNo() int {
	max := 0
	for _, l := range d.Lines {
		if l.PositionNo > max {
			max = l.PositionNo
		}
	}
	return max + 1
}

// SalesDocumentLine carries a value snapshot of price, tax rate and
// discountability plus the computed amounts. TaxRateID is kept for reporting;
// calculations only read TaxRateValue.
type SalesDocumentLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PositionNo     int             `gorm:"not null"`
	ItemID         *uuid.UUID      `gorm:"type:uuid;index"`
	Description    string          `gorm:"type:text;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPriceNet   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRateID      *uuid.UUID      `gorm:"type:uuid"`
	TaxRateValue   decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	IsDiscountable bool            `gorm:"not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	CostType1      *string         `gorm:"type:varchar(50)"`
	CostType2      *string         `gorm:"type:varchar(50)"`
	LineNet        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTax        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineGross      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

func (l *SalesDocumentLine) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// DocumentCounter backs gap-free document numbers per company, type and year.
type DocumentCounter struct {
	CompanyID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentType string    `gorm:"type:varchar(30);primaryKey"`
	Year         int       `gorm:"primaryKey;autoIncrement:false"`
	Value        int       `gorm:"not null"`
}
