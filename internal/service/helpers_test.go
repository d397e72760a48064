package service

import (
	"context"
	"testing"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── SQLite test database ──────────────────────────────────────────────────────

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture is a company in DE with one domestic customer, a 14 day payment
// term and the STANDARD (19 %) and ZERO tax rates.
type fixture struct {
	db       *gorm.DB
	reg      *Registry
	company  *model.Company
	customer *model.Customer
	term     *model.PaymentTerm
	standard *model.TaxRate
	zero     *model.TaxRate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	f := &fixture{db: db}
	f.company = &model.Company{Name: "Muster GmbH", CountryCode: "DE"}
	require.NoError(t, repository.NewCompanyRepository(db).Create(ctx, f.company))

	f.customer = &model.Customer{CompanyID: f.company.ID, Name: "Kunde Berlin", CountryCode: "DE", Email: "kunde@example.de"}
	require.NoError(t, repository.NewCustomerRepository(db).Create(ctx, f.customer))

	f.term = &model.PaymentTerm{CompanyID: f.company.ID, Name: "14 Tage netto", NetDays: 14}
	require.NoError(t, repository.NewPaymentTermRepository(db).Create(ctx, f.term))

	rates := repository.NewTaxRateRepository(db)
	f.standard = &model.TaxRate{Code: "STANDARD", Name: "19 %", Rate: dec("0.19"), IsActive: true}
	require.NoError(t, rates.Create(ctx, f.standard))
	f.zero = &model.TaxRate{Code: "ZERO", Name: "0 %", Rate: decimal.Zero, IsActive: true}
	require.NoError(t, rates.Create(ctx, f.zero))

	f.reg = NewRegistry(db, RegistryConfig{CompanyCountry: "DE", ZeroTaxRateCode: "ZERO"})
	return f
}

// relocateCompany moves the fixture company to another country.
func (f *fixture) relocateCompany(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, f.db.Model(f.company).Update("country_code", code).Error)
	f.company.CountryCode = code
}

// addCustomer stores another customer of the fixture company.
func (f *fixture) addCustomer(t *testing.T, c *model.Customer) *model.Customer {
	t.Helper()
	c.CompanyID = f.company.ID
	require.NoError(t, repository.NewCustomerRepository(f.db).Create(context.Background(), c))
	return c
}

// addContract stores a monthly contract with a single 1 x 1000.00 line at 19 %
// unless mutate changes it.
func (f *fixture) addContract(t *testing.T, mutate func(c *model.Contract)) *model.Contract {
	t.Helper()
	c := &model.Contract{
		CompanyID:     f.company.ID,
		CustomerID:    f.customer.ID,
		Name:          "Wartung " + uuid.NewString()[:8],
		DocumentType:  model.DocumentTypeInvoice,
		PaymentTermID: f.term.ID,
		Currency:      "EUR",
		Interval:      model.IntervalMonthly,
		StartDate:     day(2026, 1, 1),
		NextRunDate:   day(2026, 1, 1),
		IsActive:      true,
		Lines: []model.ContractLine{{
			PositionNo:   1,
			Description:  "Wartungspauschale",
			Quantity:     dec("1"),
			UnitPriceNet: dec("1000.00"),
			TaxRateID:    f.standard.ID,
		}},
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, repository.NewContractRepository(f.db).Create(context.Background(), c))
	return c
}

func (f *fixture) reloadContract(t *testing.T, id uuid.UUID) *model.Contract {
	t.Helper()
	c, err := repository.NewContractRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubZeroRate struct {
	rate  *model.TaxRate
	err   error
	calls int
}

func (s *stubZeroRate) ZeroRate(_ context.Context) (*model.TaxRate, error) {
	s.calls++
	return s.rate, s.err
}

type stubDispatcher struct {
	enqueued []uuid.UUID
	err      error
}

func (d *stubDispatcher) EnqueueDocumentDelivery(_ context.Context, id uuid.UUID) error {
	d.enqueued = append(d.enqueued, id)
	return d.err
}
