package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/migrations"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the database behind dsn and brings the schema up to date.
//
// postgres:// DSNs use pgx; "file:" or "sqlite:" DSNs open an embedded SQLite
// database (local development and tests). When sqlMigrations is set the schema
// is managed by the embedded golang-migrate files, otherwise by AutoMigrate
// followed by the idempotent schema patches.
func NewDatabase(dsn string, sqlMigrations bool) (*gorm.DB, error) {
	if isSQLite(dsn) {
		db, err := OpenSQLite(strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, err
		}
		return db, Migrate(db)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if sqlMigrations {
		if err := RunSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
		return db, nil
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database. Foreign keys are switched on so that the
// RESTRICT / CASCADE rules behave as on Postgres.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection keeps shared in-memory databases alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, "sqlite:")
}

// Migrate runs AutoMigrate for every model and applies the schema patches.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express (expression and partial indexes). The statements are valid on both
// Postgres and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// tax rate codes are unique regardless of case ("zero" == "ZERO")
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_tax_rates_code_ci ON tax_rates (LOWER(code))`,
		// due-contract scan only touches active contracts
		`CREATE INDEX IF NOT EXISTS idx_contracts_due ON contracts (next_run_date) WHERE is_active`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded SQL migrations with golang-migrate.
func RunSQLMigrations(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
