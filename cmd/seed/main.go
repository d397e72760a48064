// cmd/seed/main.go — creates the base tax rates and, on an empty database, a
// demo company with a payment term. Safe to run repeatedly.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"

	"github.com/gdsanger/KManager-sub000/internal/config"
	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/logger"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var baseRates = []model.TaxRate{
	{Code: "STANDARD", Name: "Umsatzsteuer 19 %", Rate: decimal.RequireFromString("0.19"), IsActive: true},
	{Code: "REDUCED", Name: "Umsatzsteuer 7 %", Rate: decimal.RequireFromString("0.07"), IsActive: true},
	{Code: "ZERO", Name: "Steuerfrei 0 %", Rate: decimal.Zero, IsActive: true},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Migrations)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	ctx := context.Background()

	taxRates := repository.NewTaxRateRepository(db)
	for i := range baseRates {
		rate := baseRates[i]
		if rate.Code == "ZERO" {
			rate.Code = cfg.ZeroTaxRateCode
		}
		_, err := taxRates.FindByCode(ctx, rate.Code)
		if err == nil {
			log.Info().Str("code", rate.Code).Msg("tax rate exists")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal().Err(err).Str("code", rate.Code).Msg("lookup tax rate")
		}
		if err := taxRates.Create(ctx, &rate); err != nil {
			log.Fatal().Err(err).Str("code", rate.Code).Msg("insert tax rate")
		}
		log.Info().Str("code", rate.Code).Str("rate", rate.Rate.String()).Msg("tax rate created")
	}

	companies := repository.NewCompanyRepository(db)
	existing, err := companies.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list companies")
	}
	if len(existing) > 0 {
		log.Info().Int("companies", len(existing)).Msg("companies exist, skipping demo company")
		return
	}

	company := &model.Company{Name: "Demo GmbH", CountryCode: cfg.CompanyCountry, City: "Berlin"}
	if err := companies.Create(ctx, company); err != nil {
		log.Fatal().Err(err).Msg("insert company")
	}
	term := &model.PaymentTerm{CompanyID: company.ID, Name: "14 Tage netto", NetDays: 14}
	if err := repository.NewPaymentTermRepository(db).Create(ctx, term); err != nil {
		log.Fatal().Err(err).Msg("insert payment term")
	}
	log.Info().
		Str("company_id", company.ID.String()).
		Str("payment_term_id", term.ID.String()).
		Msg("demo company created")
}
