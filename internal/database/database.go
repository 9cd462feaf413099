package database

import (
	"fmt"
	"os"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	pkgLogger "github.com/rcabrera/medtrack-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string, slowQuery time.Duration) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(logLevel, slowQuery)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		// Map unique violations to gorm.ErrDuplicatedKey so the ledger can
		// tell a lost race apart from other storage failures.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema. The partial unique index on current
// assignments is the storage-level guarantee behind the single-current
// invariant; it must exist before the ledger takes writes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Patient{},
		&models.Department{},
		&models.Assignment{},
		&models.AuditEntry{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_current
		 ON assignments (entity_type, entity_id) WHERE is_current`,
	).Error; err != nil {
		return fmt.Errorf("failed to create single-current index: %w", err)
	}

	return nil
}
