package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ContractService interface {
	Create(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error)
	List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.ContractResponse, error)
	Runs(ctx context.Context, id uuid.UUID) ([]dto.ContractRunResponse, error)
}

type contractService struct {
	repo      repository.ContractRepository
	runs      repository.ContractRunRepository
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	terms     repository.PaymentTermRepository
	items     repository.ItemRepository
	taxRates  repository.TaxRateRepository
	tax       TaxService
	activity  ActivityLogger
}

func NewContractService(
	repo repository.ContractRepository,
	runs repository.ContractRunRepository,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	terms repository.PaymentTermRepository,
	items repository.ItemRepository,
	taxRates repository.TaxRateRepository,
	tax TaxService,
	activity ActivityLogger,
) ContractService {
	return &contractService{
		repo:      repo,
		runs:      runs,
		companies: companies,
		customers: customers,
		terms:     terms,
		items:     items,
		taxRates:  taxRates,
		tax:       tax,
		activity:  activity,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Lines with an item_id take price, tax rate and discountability from the item
// (the tax rate determined for the contract's customer); explicit request
// values override the item. The contract is validated before anything is written.

func (s *contractService) Create(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	companyID, err := parseUUID("company_id", req.CompanyID)
	if err != nil {
		return nil, err
	}
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return nil, err
	}
	termID, err := parseUUID("payment_term_id", req.PaymentTermID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("Kunde: %w", notFound(err))
	}
	if customer.CompanyID != companyID {
		return nil, model.NewValidationError("customer_id", "Kunde gehört nicht zum Mandanten")
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("Mandant: %w", notFound(err))
	}
	country := issuerCountry(s.tax, company)
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		return nil, fmt.Errorf("Zahlungsbedingung: %w", notFound(err))
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, model.NewValidationError("start_date", "ungültiges Datum")
	}
	next := start
	if req.NextRunDate != nil && *req.NextRunDate != "" {
		if next, err = model.ParseDate(*req.NextRunDate); err != nil {
			return nil, model.NewValidationError("next_run_date", "ungültiges Datum")
		}
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "EUR"
	}

	c := &model.Contract{
		CompanyID:     companyID,
		CustomerID:    customerID,
		Name:          req.Name,
		DocumentType:  req.DocumentType,
		PaymentTermID: termID,
		Currency:      currency,
		Interval:      model.Interval(req.Interval),
		StartDate:     start,
		NextRunDate:   next,
		IsActive:      true,
	}
	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err := model.ParseDate(*req.EndDate)
		if err != nil {
			return nil, model.NewValidationError("end_date", "ungültiges Datum")
		}
		c.EndDate = &endDate
	}

	for _, lr := range req.Lines {
		line, err := s.buildLine(ctx, customer, country, lr)
		if err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, line)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, duplicate(err)
	}

	s.logActivity(ctx, c, ActivityContractCreated, fmt.Sprintf("Vertrag %q angelegt", c.Name),
		fmt.Sprintf("%s, erste Abrechnung am %s", c.Interval, formatDate(c.NextRunDate)))

	resp := toContractResponse(c)
	return &resp, nil
}

func (s *contractService) buildLine(ctx context.Context, customer *model.Customer, country string, lr dto.ContractLineRequest) (model.ContractLine, error) {
	line := model.ContractLine{
		PositionNo:  lr.PositionNo,
		Description: lr.Description,
		Quantity:    lr.Quantity,
		Discount:    lr.Discount,
		CostType1:   lr.CostType1,
		CostType2:   lr.CostType2,
	}

	itemID, err := parseOptionalUUID("lines.item_id", lr.ItemID)
	if err != nil {
		return line, err
	}
	if itemID != nil {
		item, err := s.items.FindByID(ctx, *itemID)
		if err != nil {
			return line, fmt.Errorf("Artikel: %w", notFound(err))
		}
		ApplyItemToContractLine(&line, item)
		rate, err := s.tax.DetermineTaxRate(ctx, customer, item.TaxRate, country)
		if err != nil {
			return line, err
		}
		if rate != nil {
			line.TaxRateID = rate.ID
		}
	} else if lr.UnitPriceNet == nil || lr.TaxRateID == nil {
		return line, model.NewValidationError("lines", "Position ohne Artikel braucht Preis und Steuersatz")
	}

	if lr.UnitPriceNet != nil {
		line.UnitPriceNet = *lr.UnitPriceNet
	}
	if lr.IsDiscountable != nil {
		line.IsDiscountable = *lr.IsDiscountable
	}
	if err := checkDiscount("lines.discount", line.Discount, line.IsDiscountable); err != nil {
		return line, err
	}
	taxID, err := parseOptionalUUID("lines.tax_rate_id", lr.TaxRateID)
	if err != nil {
		return line, err
	}
	if taxID != nil {
		rate, err := s.taxRates.FindByID(ctx, *taxID)
		if err != nil {
			return line, fmt.Errorf("Steuersatz: %w", notFound(err))
		}
		if !rate.IsActive {
			return line, model.NewValidationError("lines.tax_rate_id", "Steuersatz ist nicht aktiv")
		}
		line.TaxRateID = rate.ID
	}
	return line, nil
}

func (s *contractService) Get(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := toContractResponse(c)
	return &resp, nil
}

func (s *contractService) List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error) {
	contracts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.ContractListResponse{
		Data:       make([]dto.ContractResponse, 0, len(contracts)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range contracts {
		out.Data = append(out.Data, toContractResponse(&contracts[i]))
	}
	return out, nil
}

// SetActive deactivates or reactivates a contract. Deactivated contracts are
// skipped by billing; their runs and documents stay.
func (s *contractService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.ContractResponse, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, notFound(err)
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	state := "deaktiviert"
	if active {
		state = "reaktiviert"
	}
	s.logActivity(ctx, c, ActivityContractStatus, fmt.Sprintf("Vertrag %q %s", c.Name, state), "")
	resp := toContractResponse(c)
	return &resp, nil
}

func (s *contractService) Runs(ctx context.Context, id uuid.UUID) ([]dto.ContractRunResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	runs, err := s.runs.ListByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContractRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, ToContractRunResponse(&runs[i]))
	}
	return out, nil
}

func (s *contractService) logActivity(ctx context.Context, c *model.Contract, typ, title, description string) {
	if s.activity == nil {
		return
	}
	companyID := c.CompanyID
	err := s.activity.Log(ctx, &model.Activity{
		CompanyID:   &companyID,
		Domain:      DomainContract,
		Type:        typ,
		Title:       title,
		Description: description,
	})
	if err != nil {
		log.Warn().Err(err).Str("type", typ).Str("contract_id", c.ID.String()).Msg("activity log failed")
	}
}
