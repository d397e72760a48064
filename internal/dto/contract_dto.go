package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateContractRequest creates a contract with its template lines.
// NextRunDate defaults to StartDate.
type CreateContractRequest struct {
	CompanyID     string                `json:"company_id"      validate:"required,uuid"`
	CustomerID    string                `json:"customer_id"     validate:"required,uuid"`
	Name          string                `json:"name"            validate:"required,max=200"`
	DocumentType  string                `json:"document_type"   validate:"required,oneof=INVOICE QUOTE ORDER_CONFIRMATION CREDIT_NOTE"`
	PaymentTermID string                `json:"payment_term_id" validate:"required,uuid"`
	Currency      string                `json:"currency"        validate:"omitempty,len=3"`
	Interval      string                `json:"interval"        validate:"required,oneof=MONTHLY QUARTERLY SEMI_ANNUAL ANNUAL"`
	StartDate     string                `json:"start_date"      validate:"required,datetime=2006-01-02"`
	EndDate       *string               `json:"end_date"        validate:"omitempty,datetime=2006-01-02"`
	NextRunDate   *string               `json:"next_run_date"   validate:"omitempty,datetime=2006-01-02"`
	Lines         []ContractLineRequest `json:"lines"           validate:"required,min=1,dive"`
}

// ContractLineRequest either names an ItemID (price, tax rate and
// discountability are snapshotted from the item) or carries the values itself.
// Explicit values win over the item snapshot.
type ContractLineRequest struct {
	PositionNo     int              `json:"position_no"     validate:"required,min=1"`
	ItemID         *string          `json:"item_id"         validate:"omitempty,uuid"`
	Description    string           `json:"description"     validate:"required"`
	Quantity       decimal.Decimal  `json:"quantity"        validate:"gt=0"`
	UnitPriceNet   *decimal.Decimal `json:"unit_price_net"`
	TaxRateID      *string          `json:"tax_rate_id"     validate:"omitempty,uuid"`
	IsDiscountable *bool            `json:"is_discountable"`
	Discount       decimal.Decimal  `json:"discount"        validate:"min=0,max=1"`
	CostType1      *string          `json:"cost_type_1"     validate:"omitempty,max=50"`
	CostType2      *string          `json:"cost_type_2"     validate:"omitempty,max=50"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ContractFilter struct {
	CompanyID  string `form:"company_id"  validate:"omitempty,uuid"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Status     string `form:"status,default=active" validate:"oneof=active inactive all"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContractLineResponse struct {
	ID             string          `json:"id"`
	PositionNo     int             `json:"position_no"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceNet   decimal.Decimal `json:"unit_price_net"`
	TaxRateID      string          `json:"tax_rate_id"`
	IsDiscountable bool            `json:"is_discountable"`
	Discount       decimal.Decimal `json:"discount"`
	CostType1      *string         `json:"cost_type_1"`
	CostType2      *string         `json:"cost_type_2"`
}

type ContractResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	CustomerID    string                 `json:"customer_id"`
	Name          string                 `json:"name"`
	DocumentType  string                 `json:"document_type"`
	PaymentTermID string                 `json:"payment_term_id"`
	Currency      string                 `json:"currency"`
	Interval      string                 `json:"interval"`
	StartDate     string                 `json:"start_date"`
	EndDate       *string                `json:"end_date"`
	NextRunDate   string                 `json:"next_run_date"`
	LastRunDate   *string                `json:"last_run_date"`
	IsActive      bool                   `json:"is_active"`
	Lines         []ContractLineResponse `json:"lines,omitempty"`
}

type ContractListResponse struct {
	Data       []ContractResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type ContractRunResponse struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contract_id"`
	RunDate    string  `json:"run_date"`
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DocumentID *string `json:"document_id"`
	CreatedAt  string  `json:"created_at"`
}
