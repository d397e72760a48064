package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDue_CreatesDocumentAndAdvancesSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.addContract(t, nil)

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.Created)
	require.NotNil(t, res.Run)
	assert.Equal(t, model.RunStatusSuccess, res.Run.Status)
	require.NotNil(t, res.Run.DocumentID)

	doc, err := f.reg.DocumentRepo.FindByID(ctx, *res.Run.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-00001", doc.Number)
	assert.Equal(t, model.DocumentStatusDraft, doc.Status)
	assert.Equal(t, "2026-01-01", doc.IssueDate.Format(model.DateLayout))
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, "2026-01-15", doc.DueDate.Format(model.DateLayout))
	require.NotNil(t, doc.ContractID)
	assert.Equal(t, contract.ID, *doc.ContractID)
	assert.Equal(t, "1000.00", doc.TotalNet.StringFixed(2))
	assert.Equal(t, "190.00", doc.TotalTax.StringFixed(2))
	assert.Equal(t, "1190.00", doc.TotalGross.StringFixed(2))
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "Wartungspauschale", doc.Lines[0].Description)
	assert.Equal(t, "0.19", doc.Lines[0].TaxRateValue.String())

	reloaded := f.reloadContract(t, contract.ID)
	assert.Equal(t, "2026-02-01", reloaded.NextRunDate.Format(model.DateLayout))
	require.NotNil(t, reloaded.LastRunDate)
	assert.Equal(t, "2026-01-01", reloaded.LastRunDate.Format(model.DateLayout))
}

func TestGenerateDue_IsIdempotentPerDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.addContract(t, nil)

	first := f.reg.Billing.BillContract(ctx, contract.ID, day(2026, 1, 1))
	require.NoError(t, first.Err)
	require.True(t, first.Created)

	second := f.reg.Billing.BillContract(ctx, contract.ID, day(2026, 1, 1))
	require.NoError(t, second.Err)
	assert.False(t, second.Created)
	require.NotNil(t, second.Run)
	assert.Equal(t, first.Run.ID, second.Run.ID)

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Created)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, contract.ID, results[0].ContractID)
	assert.Equal(t, first.Run.ID, results[0].Run.ID)

	runs, err := f.reg.Billing.RunsForDate(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	docs, total, err := repository.NewDocumentRepository(f.db).List(ctx, dto.DocumentFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, docs, 1)
}

func TestGenerateDue_FailingContractDoesNotStopBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	good := f.addContract(t, nil)
	broken := f.addContract(t, func(c *model.Contract) { c.Lines = nil })

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 2)

	byContract := map[string]BillingResult{}
	for _, r := range results {
		byContract[r.ContractID.String()] = r
	}

	ok := byContract[good.ID.String()]
	require.NoError(t, ok.Err)
	assert.True(t, ok.Created)
	assert.Equal(t, model.RunStatusSuccess, ok.Run.Status)

	failed := byContract[broken.ID.String()]
	require.Error(t, failed.Err)
	assert.True(t, failed.Created)
	require.NotNil(t, failed.Run)
	assert.Equal(t, model.RunStatusFailed, failed.Run.Status)
	assert.Nil(t, failed.Run.DocumentID)
	assert.NotEmpty(t, failed.Run.Message)

	// the failed contract keeps its schedule and no document exists for it
	reloaded := f.reloadContract(t, broken.ID)
	assert.Equal(t, "2026-01-01", reloaded.NextRunDate.Format(model.DateLayout))
	assert.Nil(t, reloaded.LastRunDate)
	_, total, err := repository.NewDocumentRepository(f.db).List(ctx, dto.DocumentFilter{ContractID: broken.ID.String(), Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// a second pass for the same date returns the FAILED run instead of retrying
	again, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, again, 2)
	rerun := map[string]BillingResult{}
	for _, r := range again {
		assert.False(t, r.Created)
		assert.NoError(t, r.Err)
		rerun[r.ContractID.String()] = r
	}
	assert.Equal(t, failed.Run.ID, rerun[broken.ID.String()].Run.ID)
	assert.Equal(t, ok.Run.ID, rerun[good.ID.String()].Run.ID)

	activities, err := f.reg.Activity.List(ctx, dto.ActivityFilter{Domain: DomainBilling, Limit: 10})
	require.NoError(t, err)
	var types []string
	for _, a := range activities {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, ActivityContractBilled)
	assert.Contains(t, types, ActivityContractBillingFailed)
}

func TestGenerateDue_SkipsEndedInactiveAndFutureContracts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addContract(t, func(c *model.Contract) {
		end := day(2025, 12, 31)
		c.StartDate, c.NextRunDate, c.EndDate = day(2025, 1, 1), day(2025, 12, 1), &end
	})
	f.addContract(t, func(c *model.Contract) { c.IsActive = false })
	f.addContract(t, func(c *model.Contract) { c.StartDate, c.NextRunDate = day(2026, 2, 1), day(2026, 2, 1) })

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerateDue_ContractEndingTodayIsBilled(t *testing.T) {
	f := newFixture(t)
	end := day(2026, 1, 1)
	f.addContract(t, func(c *model.Contract) { c.EndDate = &end })

	results, err := f.reg.Billing.GenerateDue(context.Background(), day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Created)
}

func TestGenerateDue_CatchUpOneRunPerCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.addContract(t, func(c *model.Contract) { c.StartDate, c.NextRunDate = day(2025, 11, 1), day(2025, 11, 1) })

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2026-01-01", results[0].Run.RunDate.Format(model.DateLayout))

	reloaded := f.reloadContract(t, contract.ID)
	assert.Equal(t, "2025-12-01", reloaded.NextRunDate.Format(model.DateLayout))
}

func TestGenerateDue_QuarterlyAndNumbering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addContract(t, func(c *model.Contract) {
		c.Interval = model.IntervalQuarterly
		c.StartDate, c.NextRunDate = day(2026, 1, 15), day(2026, 1, 15)
	})
	f.addContract(t, func(c *model.Contract) { c.StartDate, c.NextRunDate = day(2026, 1, 15), day(2026, 1, 15) })

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 15))
	require.NoError(t, err)
	require.Len(t, results, 2)

	numbers := map[string]bool{}
	for _, r := range results {
		require.NoError(t, r.Err)
		doc, err := f.reg.DocumentRepo.FindByID(ctx, *r.Run.DocumentID)
		require.NoError(t, err)
		numbers[doc.Number] = true
	}
	assert.True(t, numbers["RE-2026-00001"])
	assert.True(t, numbers["RE-2026-00002"])

	reloaded := f.reloadContract(t, a.ID)
	assert.Equal(t, "2026-04-15", reloaded.NextRunDate.Format(model.DateLayout))
}

func TestGenerateDue_ReverseChargeCustomerGetsContractRate(t *testing.T) {
	// billing copies the template; tax determination happens when lines are set up
	f := newFixture(t)
	ctx := context.Background()
	french := f.addCustomer(t, &model.Customer{Name: "SARL Paris", CountryCode: "FR", IsBusiness: true, VatID: "FR123"})
	f.addContract(t, func(c *model.Contract) {
		c.CustomerID = french.ID
		c.Lines[0].TaxRateID = f.zero.ID
	})

	results, err := f.reg.Billing.GenerateDue(ctx, day(2026, 1, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	doc, err := f.reg.DocumentRepo.FindByID(ctx, *results[0].Run.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", doc.TotalNet.StringFixed(2))
	assert.True(t, doc.TotalTax.IsZero())
	assert.Equal(t, "1000.00", doc.TotalGross.StringFixed(2))
}

func TestBillContract_NotDue(t *testing.T) {
	f := newFixture(t)
	contract := f.addContract(t, func(c *model.Contract) { c.StartDate, c.NextRunDate = day(2026, 3, 1), day(2026, 3, 1) })

	res := f.reg.Billing.BillContract(context.Background(), contract.ID, day(2026, 1, 1))
	assert.True(t, errors.Is(res.Err, ErrContractNotDue))
	assert.Nil(t, res.Run)
	assert.False(t, res.Created)
}
