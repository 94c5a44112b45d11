package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

var dialects = map[string]database.Dialect{
	"sqlite":   database.DialectSQLite3,
	"pgx":      database.DialectPostgres,
	"postgres": database.DialectPostgres,
	"mysql":    database.DialectMySQL,
}

func dialectFor(driver string) (database.Dialect, error) {
	dialect, ok := dialects[driver]
	if !ok {
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
	return dialect, nil
}

// newProvider builds a goose provider over the embedded migrations.
// Providers hold no global state, so several databases can migrate at once.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations directory: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		slog.Debug("applied session migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back session migration", "version", result.Source.Version)
	return nil
}
