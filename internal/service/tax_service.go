package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"gorm.io/gorm"
)

// DefaultCompanyCountry is used when neither caller nor config names one.
const DefaultCompanyCountry = "DE"

// euCountries holds the EU member states. Greece appears as GR (ISO) and EL
// (VIES prefix).
var euCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"EL": true, "HU": true, "IE": true, "IT": true, "LV": true, "LT": true,
	"LU": true, "MT": true, "NL": true, "PL": true, "PT": true, "RO": true,
	"SK": true, "SI": true, "ES": true, "SE": true,
}

// countryNames maps free-text country names from address imports to ISO codes.
var countryNames = map[string]string{
	"DEUTSCHLAND": "DE", "GERMANY": "DE", "BRD": "DE",
	"ÖSTERREICH": "AT", "OESTERREICH": "AT", "AUSTRIA": "AT",
	"FRANKREICH": "FR", "FRANCE": "FR",
	"NIEDERLANDE": "NL", "NETHERLANDS": "NL",
	"ITALIEN": "IT", "ITALY": "IT",
	"SPANIEN": "ES", "SPAIN": "ES",
	"SCHWEIZ": "CH", "SWITZERLAND": "CH",
	"VEREINIGTES KÖNIGREICH": "GB", "UNITED KINGDOM": "GB", "GROSSBRITANNIEN": "GB",
	"USA": "US", "VEREINIGTE STAATEN": "US", "UNITED STATES": "US",
}

// TaxCategory is the VAT treatment of a customer relative to the issuing company.
type TaxCategory int

const (
	TaxDomestic      TaxCategory = iota // item rate
	TaxReverseCharge                    // EU B2B with VAT id, 0 %
	TaxEUConsumer                       // EU B2C or B2B without VAT id, item rate
	TaxExport                           // outside the EU, 0 %
)

// UsesZeroRate reports whether the category replaces the item rate by 0 %.
func (c TaxCategory) UsesZeroRate() bool {
	return c == TaxReverseCharge || c == TaxExport
}

// Label returns the classification shown in the UI and on documents.
func (c TaxCategory) Label(companyCountry string) string {
	switch c {
	case TaxReverseCharge:
		return "Reverse Charge (EU B2B)"
	case TaxEUConsumer:
		return "Standard (EU B2C)"
	case TaxExport:
		return "Export (Nicht-EU)"
	default:
		return fmt.Sprintf("Standard (%s)", companyCountry)
	}
}

// NormalizeCountry returns the ISO code of a customer: CountryCode when set,
// otherwise a lookup of the free-text Country, falling back to DE.
func NormalizeCountry(c *model.Customer) string {
	if code := strings.ToUpper(strings.TrimSpace(c.CountryCode)); code != "" {
		return code
	}
	name := strings.ToUpper(strings.TrimSpace(c.Country))
	if code, ok := countryNames[name]; ok {
		return code
	}
	if len(name) == 2 {
		return name
	}
	return DefaultCompanyCountry
}

// Classify decides the VAT treatment. A nil customer is domestic.
// DetermineTaxRate and TaxLabel both go through here so they cannot diverge.
func Classify(customer *model.Customer, companyCountry string) TaxCategory {
	if customer == nil {
		return TaxDomestic
	}
	country := NormalizeCountry(customer)
	if country == normalizeCode(companyCountry) {
		return TaxDomestic
	}
	if euCountries[country] {
		if customer.IsBusiness && strings.TrimSpace(customer.VatID) != "" {
			return TaxReverseCharge
		}
		return TaxEUConsumer
	}
	return TaxExport
}

func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCompanyCountry
	}
	return code
}

// ── Zero rate provider ────────────────────────────────────────────────────────

// ZeroRateProvider supplies the canonical 0 % rate used for reverse charge and
// export.
type ZeroRateProvider interface {
	ZeroRate(ctx context.Context) (*model.TaxRate, error)
}

type repoZeroRateProvider struct {
	repo repository.TaxRateRepository
	code string
}

// NewZeroRateProvider looks the rate up by code (case-insensitive) and falls
// back to any active 0 % rate. Without one it fails with ErrZeroTaxRateMissing.
func NewZeroRateProvider(repo repository.TaxRateRepository, code string) ZeroRateProvider {
	return &repoZeroRateProvider{repo: repo, code: code}
}

func (p *repoZeroRateProvider) ZeroRate(ctx context.Context) (*model.TaxRate, error) {
	if p.code != "" {
		rate, err := p.repo.FindByCode(ctx, p.code)
		switch {
		case err == nil && rate.IsActive && rate.IsZero():
			return rate, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	rate, err := p.repo.FindFirstActiveZero(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrZeroTaxRateMissing
	}
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// ── TaxService ────────────────────────────────────────────────────────────────

type TaxService interface {
	// DetermineTaxRate returns the rate applicable for customer. An empty
	// companyCountry means the configured one.
	DetermineTaxRate(ctx context.Context, customer *model.Customer, itemRate *model.TaxRate, companyCountry string) (*model.TaxRate, error)
	TaxLabel(customer *model.Customer, companyCountry string) string
	CompanyCountry() string
}

type taxService struct {
	zero           ZeroRateProvider
	companyCountry string
}

func NewTaxService(zero ZeroRateProvider, companyCountry string) TaxService {
	return &taxService{zero: zero, companyCountry: normalizeCode(companyCountry)}
}

func (s *taxService) CompanyCountry() string { return s.companyCountry }

// issuerCountry is the country a customer of company is classified against.
// Rate determination and the tax label both resolve it here.
func issuerCountry(tax TaxService, company *model.Company) string {
	if company != nil && strings.TrimSpace(company.CountryCode) != "" {
		return normalizeCode(company.CountryCode)
	}
	return tax.CompanyCountry()
}

func (s *taxService) country(override string) string {
	if strings.TrimSpace(override) != "" {
		return normalizeCode(override)
	}
	return s.companyCountry
}

func (s *taxService) DetermineTaxRate(ctx context.Context, customer *model.Customer, itemRate *model.TaxRate, companyCountry string) (*model.TaxRate, error) {
	if !Classify(customer, s.country(companyCountry)).UsesZeroRate() {
		return itemRate, nil
	}
	return s.zero.ZeroRate(ctx)
}

func (s *taxService) TaxLabel(customer *model.Customer, companyCountry string) string {
	country := s.country(companyCountry)
	return Classify(customer, country).Label(country)
}
