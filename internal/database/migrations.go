package database

import (
	"database/sql"
	"fmt"

	"inkthread/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies all pending migrations from the embedded set
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.Files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...")

	if err := goose.Up(db, "."); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// GetMigrationStatus prints the current migration status
func GetMigrationStatus(db *sql.DB) error {
	goose.SetBaseFS(migrations.Files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.Status(db, ".")
}
