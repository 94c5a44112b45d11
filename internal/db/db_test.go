package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_SQLiteCreatesDirectoryAndMigrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	database, err := Init(ctx, "sqlite", path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close(database)

	if err := RunMigrations(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Idempotent
	if err := RunMigrations(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	err = database.Get(&count, `SELECT COUNT(*) FROM session_entries`)
	if err != nil {
		t.Fatalf("session_entries table missing: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d rows", count)
	}

	if err := MigrateDown(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if err := database.Get(&count, `SELECT COUNT(*) FROM session_entries`); err == nil {
		t.Error("expected table to be dropped")
	}
}

func TestDialectFor(t *testing.T) {
	for _, driver := range []string{"sqlite", "pgx", "postgres", "mysql"} {
		if _, err := dialectFor(driver); err != nil {
			t.Errorf("dialectFor(%q): %v", driver, err)
		}
	}
	if _, err := dialectFor("etcd"); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestInit_SQLiteKeepsQueryParameters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "private")
	database, err := Init(context.Background(), "sqlite", filepath.Join(dir, "session.db")+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close(database)

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("expected 0700 session directory, got %o", perm)
	}
	if database.Stats().MaxOpenConnections != 1 {
		t.Errorf("expected a single sqlite connection, got %d", database.Stats().MaxOpenConnections)
	}
}

func TestPrepareDSN_MySQL(t *testing.T) {
	dsn, err := prepareDSN("mysql", "user:pw@tcp(localhost:3306)/securefiles")
	if err != nil {
		t.Fatalf("prepareDSN: %v", err)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime in %s", dsn)
	}

	if _, err := prepareDSN("mysql", "not a dsn"); err == nil {
		t.Error("expected an invalid mysql DSN to fail")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
