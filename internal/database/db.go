package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"mystore-pos/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open picks the driver from the DSN: postgres URLs or key=value DSNs go to
// Postgres, anything else is treated as a sqlite file (or ":memory:").
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Migrate creates the tables and makes sure the reserved rows exist:
// the walk-in client (id=1) and the company singleton (id=1).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Client{},
		&models.Company{},
		&models.Sale{},
		&models.SaleItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	var walkIn models.Client
	err := db.First(&walkIn, models.WalkInClientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		walkIn = models.Client{ID: models.WalkInClientID, TaxID: "C/F", FirstName: "Consumidor", LastName: "Final"}
		if err := db.Create(&walkIn).Error; err != nil {
			return fmt.Errorf("walk-in client: %w", err)
		}
		log.Println("walk-in client (C/F) created")
	} else if err != nil {
		return err
	}

	var company models.Company
	err = db.First(&company, models.CompanyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		company = models.Company{ID: models.CompanyID}
		if err := db.Create(&company).Error; err != nil {
			return fmt.Errorf("company row: %w", err)
		}
		log.Println("company row created")
	} else if err != nil {
		return err
	}

	if err := resetSequences(db, "clients", "companies"); err != nil {
		return err
	}

	log.Println("Database ready, migration complete.")
	return nil
}

// sequenceResetSQL moves a serial id sequence past the highest stored id.
func sequenceResetSQL(table string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))",
		table, table)
}

// resetSequences is needed on Postgres after rows were inserted with explicit
// ids; sqlite derives the next id from the table itself.
func resetSequences(db *gorm.DB, tables ...string) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range tables {
		if err := db.Exec(sequenceResetSQL(table)).Error; err != nil {
			return fmt.Errorf("reset %s id sequence: %w", table, err)
		}
	}
	return nil
}
