package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	itemRate = &model.TaxRate{ID: uuid.New(), Code: "STANDARD", Rate: decimal.RequireFromString("0.19"), IsActive: true}
	zeroRate = &model.TaxRate{ID: uuid.New(), Code: "ZERO", Rate: decimal.Zero, IsActive: true}
)

func newTestTaxService() (TaxService, *stubZeroRate) {
	zero := &stubZeroRate{rate: zeroRate}
	return NewTaxService(zero, "DE"), zero
}

// ── Classification ────────────────────────────────────────────────────────────

func TestDetermineTaxRate(t *testing.T) {
	cases := []struct {
		name     string
		customer *model.Customer
		want     *model.TaxRate
		label    string
	}{
		{"domestic business", &model.Customer{CountryCode: "DE", IsBusiness: true, VatID: "DE123456789"}, itemRate, "Standard (DE)"},
		{"domestic consumer", &model.Customer{CountryCode: "de"}, itemRate, "Standard (DE)"},
		{"EU B2B with VAT id", &model.Customer{CountryCode: "FR", IsBusiness: true, VatID: "FR12345678901"}, zeroRate, "Reverse Charge (EU B2B)"},
		{"EU business without VAT id", &model.Customer{CountryCode: "FR", IsBusiness: true}, itemRate, "Standard (EU B2C)"},
		{"EU consumer", &model.Customer{CountryCode: "NL"}, itemRate, "Standard (EU B2C)"},
		{"Greece as EL", &model.Customer{CountryCode: "EL", IsBusiness: true, VatID: "EL123456789"}, zeroRate, "Reverse Charge (EU B2B)"},
		{"export business", &model.Customer{CountryCode: "US", IsBusiness: true, VatID: "X"}, zeroRate, "Export (Nicht-EU)"},
		{"export consumer", &model.Customer{CountryCode: "CH"}, zeroRate, "Export (Nicht-EU)"},
		{"country from name", &model.Customer{Country: "Österreich", IsBusiness: true, VatID: "ATU12345678"}, zeroRate, "Reverse Charge (EU B2B)"},
		{"english country name", &model.Customer{Country: "United Kingdom"}, zeroRate, "Export (Nicht-EU)"},
		{"unknown country name", &model.Customer{Country: "Atlantis"}, itemRate, "Standard (DE)"},
		{"no country at all", &model.Customer{}, itemRate, "Standard (DE)"},
		{"nil customer", nil, itemRate, "Standard (DE)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestTaxService()
			got, err := svc.DetermineTaxRate(context.Background(), tc.customer, itemRate, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want.ID, got.ID)
			assert.Equal(t, tc.label, svc.TaxLabel(tc.customer, ""))
		})
	}
}

func TestDetermineTaxRate_LabelAndRateAgree(t *testing.T) {
	svc, _ := newTestTaxService()
	for _, c := range []*model.Customer{
		{CountryCode: "DE"}, {CountryCode: "IT", IsBusiness: true, VatID: "IT1"},
		{CountryCode: "IT"}, {CountryCode: "JP"},
	} {
		rate, err := svc.DetermineTaxRate(context.Background(), c, itemRate, "")
		require.NoError(t, err)
		zero := Classify(c, "DE").UsesZeroRate()
		assert.Equal(t, zero, rate.IsZero(), c.CountryCode)
	}
}

func TestDetermineTaxRate_CompanyCountryOverride(t *testing.T) {
	svc, _ := newTestTaxService()
	austrian := &model.Customer{CountryCode: "AT", IsBusiness: true, VatID: "ATU1"}

	got, err := svc.DetermineTaxRate(context.Background(), austrian, itemRate, "at")
	require.NoError(t, err)
	assert.Equal(t, itemRate.ID, got.ID)
	assert.Equal(t, "Standard (AT)", svc.TaxLabel(austrian, "AT"))

	german := &model.Customer{CountryCode: "DE", IsBusiness: true, VatID: "DE1"}
	got, err = svc.DetermineTaxRate(context.Background(), german, itemRate, "AT")
	require.NoError(t, err)
	assert.Equal(t, zeroRate.ID, got.ID)
}

func TestDetermineTaxRate_DomesticDoesNotNeedZeroRate(t *testing.T) {
	svc, zero := newTestTaxService()
	_, err := svc.DetermineTaxRate(context.Background(), &model.Customer{CountryCode: "DE"}, itemRate, "")
	require.NoError(t, err)
	assert.Equal(t, 0, zero.calls)
}

func TestDetermineTaxRate_ZeroRateMissing(t *testing.T) {
	svc := NewTaxService(&stubZeroRate{err: ErrZeroTaxRateMissing}, "DE")
	_, err := svc.DetermineTaxRate(context.Background(), &model.Customer{CountryCode: "US"}, itemRate, "")
	assert.True(t, errors.Is(err, ErrZeroTaxRateMissing))
}

func TestNewTaxService_DefaultsCountry(t *testing.T) {
	svc := NewTaxService(&stubZeroRate{rate: zeroRate}, "")
	assert.Equal(t, DefaultCompanyCountry, svc.CompanyCountry())
}

// ── Zero rate provider (SQLite) ───────────────────────────────────────────────

func TestZeroRateProvider_ByCodeCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	p := NewZeroRateProvider(repository.NewTaxRateRepository(f.db), "zero")
	rate, err := p.ZeroRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.zero.ID, rate.ID)
}

func TestZeroRateProvider_FallsBackToAnyActiveZeroRate(t *testing.T) {
	f := newFixture(t)
	p := NewZeroRateProvider(repository.NewTaxRateRepository(f.db), "EXEMPT")
	rate, err := p.ZeroRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.zero.ID, rate.ID)
}

func TestZeroRateProvider_Missing(t *testing.T) {
	f := newFixture(t)
	repo := repository.NewTaxRateRepository(f.db)
	require.NoError(t, repo.SetActive(context.Background(), f.zero.ID, false))

	_, err := NewZeroRateProvider(repo, "ZERO").ZeroRate(context.Background())
	assert.True(t, errors.Is(err, ErrZeroTaxRateMissing))
}
