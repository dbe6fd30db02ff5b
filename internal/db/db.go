package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VyacheslavShrot/interview-task/internal/config"
	"github.com/VyacheslavShrot/interview-task/internal/models"
)

// ConnectAndMigrate opens the database described by dsn and brings the schema
// up to date. Postgres DSNs can use SQL migrations via golang-migrate when
// MIGRATIONS=1; everything else falls back to AutoMigrate (dev convenience).
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		if IsPostgresDSN(dsn) {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			db, err = gorm.Open(sqlite.Open(dsn), cfg)
		}
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Print masked DSN once for diagnostics (before migrations for visibility)
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	if config.ParseBool("MIGRATIONS", false) {
		if !IsPostgresDSN(dsn) {
			return nil, errors.New("MIGRATIONS=1 requires a postgres DSN")
		}
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"products", "orders", "invoices"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	return db, nil
}

// AutoMigrate creates or updates all entity tables. Exposed so tests can
// migrate in-memory databases the same way the server does.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.Product{}, &models.Order{}, &models.Invoice{}, &models.ExpenseInvoice{}, &models.TaxInvoice{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
