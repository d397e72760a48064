package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages the master data the billing core reads: companies,
// customers, tax rates, items and payment terms.
type CatalogService interface {
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	ListCompanies(ctx context.Context) ([]dto.CompanyResponse, error)

	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	ListCustomers(ctx context.Context, companyID uuid.UUID) ([]dto.CustomerResponse, error)
	CustomerTaxLabel(ctx context.Context, id uuid.UUID) (*dto.TaxLabelResponse, error)

	CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error)
	ListTaxRates(ctx context.Context, includeInactive bool) ([]dto.TaxRateResponse, error)
	SetTaxRateActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateItem(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	UpdateItem(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	ListItems(ctx context.Context, companyID uuid.UUID) ([]dto.ItemResponse, error)

	CreatePaymentTerm(ctx context.Context, req dto.CreatePaymentTermRequest) (*dto.PaymentTermResponse, error)
	ListPaymentTerms(ctx context.Context, companyID uuid.UUID) ([]dto.PaymentTermResponse, error)
}

type catalogService struct {
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	taxRates  repository.TaxRateRepository
	items     repository.ItemRepository
	terms     repository.PaymentTermRepository
	tax       TaxService
}

func NewCatalogService(
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	taxRates repository.TaxRateRepository,
	items repository.ItemRepository,
	terms repository.PaymentTermRepository,
	tax TaxService,
) CatalogService {
	return &catalogService{
		companies: companies,
		customers: customers,
		taxRates:  taxRates,
		items:     items,
		terms:     terms,
		tax:       tax,
	}
}

// ── Companies ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	c := &model.Company{
		Name:        req.Name,
		CountryCode: strings.ToUpper(req.CountryCode),
		VatID:       req.VatID,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Email:       req.Email,
		IBAN:        req.IBAN,
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, duplicate(err)
	}
	resp := toCompanyResponse(c)
	return &resp, nil
}

func (s *catalogService) ListCompanies(ctx context.Context) ([]dto.CompanyResponse, error) {
	rows, err := s.companies.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompanyResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCompanyResponse(&rows[i]))
	}
	return out, nil
}

func toCompanyResponse(c *model.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID: c.ID.String(), Name: c.Name, CountryCode: c.CountryCode, VatID: c.VatID,
		Street: c.Street, PostalCode: c.PostalCode, City: c.City, Email: c.Email, IBAN: c.IBAN,
	}
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	companyID, err := parseUUID("company_id", req.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("Mandant: %w", notFound(err))
	}
	c := &model.Customer{
		CompanyID:   companyID,
		Name:        req.Name,
		Email:       req.Email,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Country:     req.Country,
		CountryCode: strings.ToUpper(req.CountryCode),
		IsBusiness:  req.IsBusiness,
		VatID:       strings.TrimSpace(req.VatID),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, duplicate(err)
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *catalogService) GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *catalogService) ListCustomers(ctx context.Context, companyID uuid.UUID) ([]dto.CustomerResponse, error) {
	rows, err := s.customers.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCustomerResponse(&rows[i]))
	}
	return out, nil
}

// CustomerTaxLabel classifies the customer against its company's country.
func (s *catalogService) CustomerTaxLabel(ctx context.Context, id uuid.UUID) (*dto.TaxLabelResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	company, err := s.companies.FindByID(ctx, c.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("Mandant: %w", notFound(err))
	}
	country := issuerCountry(s.tax, company)
	return &dto.TaxLabelResponse{
		CustomerID:     c.ID.String(),
		CountryCode:    NormalizeCountry(c),
		CompanyCountry: country,
		Label:          s.tax.TaxLabel(c, country),
	}, nil
}

func toCustomerResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID: c.ID.String(), CompanyID: c.CompanyID.String(), Name: c.Name, Email: c.Email,
		Street: c.Street, PostalCode: c.PostalCode, City: c.City, Country: c.Country,
		CountryCode: c.CountryCode, IsBusiness: c.IsBusiness, VatID: c.VatID,
	}
}

// ── Tax rates ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error) {
	t := &model.TaxRate{
		Code:     strings.TrimSpace(req.Code),
		Name:     req.Name,
		Rate:     req.Rate,
		IsActive: true,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.taxRates.Create(ctx, t); err != nil {
		return nil, duplicate(err)
	}
	resp := toTaxRateResponse(t)
	return &resp, nil
}

func (s *catalogService) ListTaxRates(ctx context.Context, includeInactive bool) ([]dto.TaxRateResponse, error) {
	rows, err := s.taxRates.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaxRateResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toTaxRateResponse(&rows[i]))
	}
	return out, nil
}

// SetTaxRateActive is the only way to retire a rate; rates are never deleted.
func (s *catalogService) SetTaxRateActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFound(s.taxRates.SetActive(ctx, id, active))
}

func toTaxRateResponse(t *model.TaxRate) dto.TaxRateResponse {
	return dto.TaxRateResponse{ID: t.ID.String(), Code: t.Code, Name: t.Name, Rate: t.Rate, IsActive: t.IsActive}
}

// ── Items ─────────────────────────────────────────────────────────────────────

func (s *catalogService) CreateItem(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	companyID, err := parseUUID("company_id", req.CompanyID)
	if err != nil {
		return nil, err
	}
	taxID, err := parseUUID("tax_rate_id", req.TaxRateID)
	if err != nil {
		return nil, err
	}
	if _, err := s.taxRates.FindByID(ctx, taxID); err != nil {
		return nil, fmt.Errorf("Steuersatz: %w", notFound(err))
	}
	item := &model.Item{
		CompanyID:      companyID,
		ArticleNo:      req.ArticleNo,
		Name:           req.Name,
		Description:    req.Description,
		NetPrice:       req.NetPrice,
		TaxRateID:      taxID,
		IsDiscountable: req.IsDiscountable,
		IsActive:       true,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, duplicate(err)
	}
	resp := toItemResponse(item)
	return &resp, nil
}

// UpdateItem changes the catalog item only. Document lines that took a snapshot
// of the item keep their values.
func (s *catalogService) UpdateItem(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.NetPrice != nil {
		item.NetPrice = *req.NetPrice
	}
	if req.IsDiscountable != nil {
		item.IsDiscountable = *req.IsDiscountable
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if req.TaxRateID != nil {
		taxID, err := parseUUID("tax_rate_id", *req.TaxRateID)
		if err != nil {
			return nil, err
		}
		if _, err := s.taxRates.FindByID(ctx, taxID); err != nil {
			return nil, fmt.Errorf("Steuersatz: %w", notFound(err))
		}
		item.TaxRateID = taxID
		item.TaxRate = nil
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	resp := toItemResponse(item)
	return &resp, nil
}

func (s *catalogService) ListItems(ctx context.Context, companyID uuid.UUID) ([]dto.ItemResponse, error) {
	rows, err := s.items.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toItemResponse(&rows[i]))
	}
	return out, nil
}

func toItemResponse(i *model.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID: i.ID.String(), CompanyID: i.CompanyID.String(), ArticleNo: i.ArticleNo, Name: i.Name,
		Description: i.Description, NetPrice: i.NetPrice, TaxRateID: i.TaxRateID.String(),
		IsDiscountable: i.IsDiscountable, IsActive: i.IsActive,
	}
}

// ── Payment terms ─────────────────────────────────────────────────────────────

func (s *catalogService) CreatePaymentTerm(ctx context.Context, req dto.CreatePaymentTermRequest) (*dto.PaymentTermResponse, error) {
	companyID, err := parseUUID("company_id", req.CompanyID)
	if err != nil {
		return nil, err
	}
	p := &model.PaymentTerm{
		CompanyID:       companyID,
		Name:            req.Name,
		NetDays:         req.NetDays,
		DiscountDays:    req.DiscountDays,
		DiscountPercent: req.DiscountPercent,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.terms.Create(ctx, p); err != nil {
		return nil, duplicate(err)
	}
	resp := toPaymentTermResponse(p)
	return &resp, nil
}

func (s *catalogService) ListPaymentTerms(ctx context.Context, companyID uuid.UUID) ([]dto.PaymentTermResponse, error) {
	rows, err := s.terms.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentTermResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toPaymentTermResponse(&rows[i]))
	}
	return out, nil
}

func toPaymentTermResponse(p *model.PaymentTerm) dto.PaymentTermResponse {
	return dto.PaymentTermResponse{
		ID: p.ID.String(), CompanyID: p.CompanyID.String(), Name: p.Name, NetDays: p.NetDays,
		DiscountDays: p.DiscountDays, DiscountPercent: p.DiscountPercent,
	}
}
