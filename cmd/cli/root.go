package main

import (
	"fmt"
	"os"

	"github.com/gdsanger/KManager-sub000/internal/config"
	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/logger"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	svc *service.Registry

	asJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "kmanager",
	Short: "KManager CLI - Vertragsabrechnung und Belegpflege",
	Long: `KManager CLI runs the recurring contract billing and document maintenance
tasks against the configured database.

Configuration is read from the environment (and an optional .env file):
  DATABASE_URL        postgres:// or file: (SQLite)
  COMPANY_COUNTRY     default company country, DE
  ZERO_TAX_RATE_CODE  tax rate code used for reverse charge and export, ZERO`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

		db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Migrations)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		svc = service.NewRegistry(db, service.RegistryConfig{
			CompanyCountry:  cfg.CompanyCountry,
			ZeroTaxRateCode: cfg.ZeroTaxRateCode,
		})
		return nil
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Ausgabe als JSON")
	rootCmd.AddCommand(billCmd, recalcCmd, taxLabelCmd, dlqCmd)
}
