package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCompanyRequest struct {
	Name        string `json:"name"         validate:"required,min=2,max=200"`
	CountryCode string `json:"country_code" validate:"required,len=2"`
	VatID       string `json:"vat_id"       validate:"max=20"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"  validate:"max=10"`
	City        string `json:"city"`
	Email       string `json:"email"        validate:"omitempty,email"`
	IBAN        string `json:"iban"         validate:"max=34"`
}

type CreateCustomerRequest struct {
	CompanyID   string `json:"company_id"   validate:"required,uuid"`
	Name        string `json:"name"         validate:"required,min=2,max=200"`
	Email       string `json:"email"        validate:"omitempty,email"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"  validate:"max=10"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
	IsBusiness  bool   `json:"is_business"`
	VatID       string `json:"vat_id"       validate:"max=20"`
}

type CreateTaxRateRequest struct {
	Code string          `json:"code" validate:"required,max=20"`
	Name string          `json:"name" validate:"required,max=100"`
	Rate decimal.Decimal `json:"rate" validate:"min=0,max=1"`
}

type CreateItemRequest struct {
	CompanyID      string          `json:"company_id"      validate:"required,uuid"`
	ArticleNo      string          `json:"article_no"      validate:"required,max=40"`
	Name           string          `json:"name"            validate:"required,min=2,max=200"`
	Description    string          `json:"description"`
	NetPrice       decimal.Decimal `json:"net_price"       validate:"min=0"`
	TaxRateID      string          `json:"tax_rate_id"     validate:"required,uuid"`
	IsDiscountable bool            `json:"is_discountable"`
}

// UpdateItemRequest changes catalog data only; existing document lines keep
// their snapshot.
type UpdateItemRequest struct {
	Name           *string          `json:"name"            validate:"omitempty,min=2,max=200"`
	Description    *string          `json:"description"`
	NetPrice       *decimal.Decimal `json:"net_price"`
	TaxRateID      *string          `json:"tax_rate_id"     validate:"omitempty,uuid"`
	IsDiscountable *bool            `json:"is_discountable"`
	IsActive       *bool            `json:"is_active"`
}

type CreatePaymentTermRequest struct {
	CompanyID       string          `json:"company_id"       validate:"required,uuid"`
	Name            string          `json:"name"             validate:"required,max=100"`
	NetDays         int             `json:"net_days"         validate:"min=0,max=365"`
	DiscountDays    int             `json:"discount_days"    validate:"min=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"min=0,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	VatID       string `json:"vat_id"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Email       string `json:"email"`
	IBAN        string `json:"iban"`
}

type CustomerResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	IsBusiness  bool   `json:"is_business"`
	VatID       string `json:"vat_id"`
}

type TaxRateResponse struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	IsActive bool            `json:"is_active"`
}

type ItemResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	ArticleNo      string          `json:"article_no"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	NetPrice       decimal.Decimal `json:"net_price"`
	TaxRateID      string          `json:"tax_rate_id"`
	IsDiscountable bool            `json:"is_discountable"`
	IsActive       bool            `json:"is_active"`
}

type PaymentTermResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Name            string          `json:"name"`
	NetDays         int             `json:"net_days"`
	DiscountDays    int             `json:"discount_days"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// TaxLabelResponse is returned by GET /v1/customers/:id/tax-label.
type TaxLabelResponse struct {
	CustomerID     string `json:"customer_id"`
	CountryCode    string `json:"country_code"`
	CompanyCountry string `json:"company_country"`
	Label          string `json:"label"`
}
