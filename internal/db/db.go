package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens the session database for driver (sqlite, pgx or mysql) and
// verifies the connection.
func Init(ctx context.Context, driver, connection string) (*sqlx.DB, error) {
	dsn, err := prepareDSN(driver, connection)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s session database: %w", driver, err)
	}
	configurePool(db, driver)

	slog.Debug("session database connected", "driver", driver)
	return db, nil
}

// prepareDSN applies the settings the session store relies on.
func prepareDSN(driver, connection string) (string, error) {
	switch driver {
	case "sqlite":
		return sqliteDSN(connection)
	case "mysql":
		cfg, err := mysql.ParseDSN(connection)
		if err != nil {
			return "", fmt.Errorf("invalid mysql connection string: %w", err)
		}
		// updated_at is scanned as time.Time
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		return cfg.FormatDSN(), nil
	}
	return connection, nil
}

// sqliteDSN creates the parent directory of a file database with owner-only
// permissions, since it holds bearer tokens.
func sqliteDSN(connection string) (string, error) {
	if connection == ":memory:" || strings.HasPrefix(connection, "file:") {
		return connection, nil
	}

	path, _, _ := strings.Cut(connection, "?")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return connection, nil
}

// configurePool sizes the pool for one short-lived CLI process. SQLite gets
// a single connection so concurrent writes queue instead of failing busy.
func configurePool(db *sqlx.DB, driver string) {
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// Close tolerates a nil handle so callers can defer it unconditionally.
func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
