package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) contractRequest(customerID uuid.UUID, lines ...dto.ContractLineRequest) dto.CreateContractRequest {
	return dto.CreateContractRequest{
		CompanyID:     f.company.ID.String(),
		CustomerID:    customerID.String(),
		Name:          "Hosting Paket",
		DocumentType:  model.DocumentTypeInvoice,
		PaymentTermID: f.term.ID.String(),
		Interval:      string(model.IntervalMonthly),
		StartDate:     "2026-01-31",
		Lines:         lines,
	}
}

func TestContractCreate_FromItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "49.00")

	itemID := item.ID
	resp, err := f.reg.Contracts.Create(ctx, f.contractRequest(f.customer.ID, dto.ContractLineRequest{
		PositionNo: 1, ItemID: &itemID, Description: "Hosting", Quantity: dec("1"),
	}))
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "2026-01-31", resp.NextRunDate)
	assert.Equal(t, "EUR", resp.Currency)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "49.00", resp.Lines[0].UnitPriceNet.StringFixed(2))
	assert.Equal(t, f.standard.ID.String(), resp.Lines[0].TaxRateID)
}

func TestContractCreate_ReverseChargeCustomerGetsZeroRate(t *testing.T) {
	f := newFixture(t)
	austrian := f.addCustomer(t, &model.Customer{Name: "Wien GmbH", CountryCode: "AT", IsBusiness: true, VatID: "ATU12345678"})
	item := f.createItem(t, "49.00")

	itemID := item.ID
	resp, err := f.reg.Contracts.Create(context.Background(), f.contractRequest(austrian.ID, dto.ContractLineRequest{
		PositionNo: 1, ItemID: &itemID, Description: "Hosting", Quantity: dec("1"),
	}))
	require.NoError(t, err)
	assert.Equal(t, f.zero.ID.String(), resp.Lines[0].TaxRateID)
}

func TestContractCreate_ClassifiesAgainstCompanyCountry(t *testing.T) {
	f := newFixture(t)
	f.relocateCompany(t, "AT")
	ctx := context.Background()
	austrian := f.addCustomer(t, &model.Customer{Name: "Wien GmbH", CountryCode: "AT", IsBusiness: true, VatID: "ATU12345678"})
	item := f.createItem(t, "49.00")

	itemID := item.ID
	resp, err := f.reg.Contracts.Create(ctx, f.contractRequest(austrian.ID, dto.ContractLineRequest{
		PositionNo: 1, ItemID: &itemID, Description: "Hosting", Quantity: dec("1"),
	}))
	require.NoError(t, err)
	assert.Equal(t, f.standard.ID.String(), resp.Lines[0].TaxRateID)

	label, err := f.reg.Catalog.CustomerTaxLabel(ctx, austrian.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standard (AT)", label.Label)
}

func TestContractCreate_DiscountNeedsDiscountableLine(t *testing.T) {
	f := newFixture(t)
	taxID := f.standard.ID.String()
	price := dec("100")
	line := dto.ContractLineRequest{
		PositionNo: 1, Description: "Wartung", Quantity: dec("1"),
		UnitPriceNet: &price, TaxRateID: &taxID, Discount: dec("0.1"),
	}

	_, err := f.reg.Contracts.Create(context.Background(), f.contractRequest(f.customer.ID, line))
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lines.discount", verr.Field)

	discountable := true
	line.IsDiscountable = &discountable
	resp, err := f.reg.Contracts.Create(context.Background(), f.contractRequest(f.customer.ID, line))
	require.NoError(t, err)
	assert.True(t, resp.Lines[0].IsDiscountable)
	assert.Equal(t, "0.1", resp.Lines[0].Discount.String())
}

func TestContractCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taxID := f.standard.ID.String()
	price := dec("10")
	line := dto.ContractLineRequest{PositionNo: 1, Description: "X", Quantity: dec("1"), UnitPriceNet: &price, TaxRateID: &taxID}

	cases := []struct {
		name   string
		mutate func(r *dto.CreateContractRequest)
		field  string
	}{
		{"bad start date", func(r *dto.CreateContractRequest) { r.StartDate = "31.01.2026" }, "start_date"},
		{"end before start", func(r *dto.CreateContractRequest) { end := "2025-12-31"; r.EndDate = &end }, "end_date"},
		{"unknown interval", func(r *dto.CreateContractRequest) { r.Interval = "WEEKLY" }, "interval"},
		{"line without price", func(r *dto.CreateContractRequest) { r.Lines[0].UnitPriceNet = nil }, "lines"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.contractRequest(f.customer.ID, line)
			tc.mutate(&req)
			_, err := f.reg.Contracts.Create(ctx, req)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestContractCreate_InactiveTaxRateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.reg.Catalog.SetTaxRateActive(ctx, f.standard.ID, false))

	taxID := f.standard.ID.String()
	price := dec("10")
	_, err := f.reg.Contracts.Create(ctx, f.contractRequest(f.customer.ID, dto.ContractLineRequest{
		PositionNo: 1, Description: "X", Quantity: dec("1"), UnitPriceNet: &price, TaxRateID: &taxID,
	}))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestContractSetActive_AndRuns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addContract(t, nil)

	resp, err := f.reg.Contracts.SetActive(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = f.reg.Contracts.SetActive(ctx, c.ID, true)
	require.NoError(t, err)
	results, err = f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)

	runs, err := f.reg.Contracts.Runs(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2026-01-01", runs[0].RunDate)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)

	_, err = f.reg.Contracts.SetActive(ctx, uuid.New(), false)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContractCreate_ActivityFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	activity := &failingActivity{}
	svc := NewContractService(
		repository.NewContractRepository(f.db),
		repository.NewContractRunRepository(f.db),
		repository.NewCompanyRepository(f.db),
		repository.NewCustomerRepository(f.db),
		repository.NewPaymentTermRepository(f.db),
		repository.NewItemRepository(f.db),
		repository.NewTaxRateRepository(f.db),
		f.reg.Tax,
		activity,
	)
	item := f.createItem(t, "49.00")

	itemID := item.ID
	resp, err := svc.Create(context.Background(), f.contractRequest(f.customer.ID, dto.ContractLineRequest{
		PositionNo: 1, ItemID: &itemID, Description: "Hosting", Quantity: dec("1"),
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, activity.calls)
}
