package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateDocumentRequest struct {
	CompanyID     string  `json:"company_id"      validate:"required,uuid"`
	CustomerID    string  `json:"customer_id"     validate:"required,uuid"`
	DocumentType  string  `json:"document_type"   validate:"required,oneof=INVOICE QUOTE ORDER_CONFIRMATION CREDIT_NOTE"`
	PaymentTermID *string `json:"payment_term_id" validate:"omitempty,uuid"`
	Currency      string  `json:"currency"        validate:"omitempty,len=3"`
	IssueDate     string  `json:"issue_date"      validate:"omitempty,datetime=2006-01-02"` // empty = today
	Subject       string  `json:"subject"         validate:"max=200"`
}

// AddLineRequest appends a line to a DRAFT document. With ItemID the price,
// tax rate and discountability come from the item and the tax rate is then
// determined for the document's customer.
type AddLineRequest struct {
	ItemID         *string          `json:"item_id"         validate:"omitempty,uuid"`
	Description    string           `json:"description"`
	Quantity       decimal.Decimal  `json:"quantity"        validate:"gt=0"`
	UnitPriceNet   *decimal.Decimal `json:"unit_price_net"`
	TaxRateID      *string          `json:"tax_rate_id"     validate:"omitempty,uuid"`
	IsDiscountable *bool            `json:"is_discountable"`
	Discount       decimal.Decimal  `json:"discount"        validate:"min=0,max=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type DocumentFilter struct {
	CompanyID    string `form:"company_id"    validate:"omitempty,uuid"`
	CustomerID   string `form:"customer_id"   validate:"omitempty,uuid"`
	ContractID   string `form:"contract_id"   validate:"omitempty,uuid"`
	Status       string `form:"status"        validate:"omitempty,oneof=DRAFT ISSUED PAID CANCELLED"`
	DocumentType string `form:"document_type" validate:"omitempty,oneof=INVOICE QUOTE ORDER_CONFIRMATION CREDIT_NOTE"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DocumentLineResponse struct {
	ID             string          `json:"id"`
	PositionNo     int             `json:"position_no"`
	ItemID         *string         `json:"item_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceNet   decimal.Decimal `json:"unit_price_net"`
	TaxRateID      *string         `json:"tax_rate_id"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	IsDiscountable bool            `json:"is_discountable"`
	Discount       decimal.Decimal `json:"discount"`
	LineNet        decimal.Decimal `json:"line_net"`
	LineTax        decimal.Decimal `json:"line_tax"`
	LineGross      decimal.Decimal `json:"line_gross"`
}

type DocumentResponse struct {
	ID           string                 `json:"id"`
	CompanyID    string                 `json:"company_id"`
	CustomerID   string                 `json:"customer_id"`
	DocumentType string                 `json:"document_type"`
	Number       string                 `json:"number"`
	Status       string                 `json:"status"`
	Subject      string                 `json:"subject"`
	IssueDate    string                 `json:"issue_date"`
	DueDate      *string                `json:"due_date"`
	Currency     string                 `json:"currency"`
	ContractID   *string                `json:"contract_id"`
	TotalNet     decimal.Decimal        `json:"total_net"`
	TotalTax     decimal.Decimal        `json:"total_tax"`
	TotalGross   decimal.Decimal        `json:"total_gross"`
	PDFPath      *string                `json:"pdf_path"`
	Lines        []DocumentLineResponse `json:"lines"`
}

type DocumentListResponse struct {
	Data       []DocumentResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// TotalsResponse is the outcome of a recalculation or preview.
type TotalsResponse struct {
	TotalNet   decimal.Decimal `json:"total_net"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	TotalGross decimal.Decimal `json:"total_gross"`
	Persisted  bool            `json:"persisted"`
}
