package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrEntryNotFound = errors.New("session entry not found")
)

type EntryRepository interface {
	Get(ctx context.Context, profile, key string) (string, error)
	Put(ctx context.Context, profile string, values map[string]string) error
	Delete(ctx context.Context, profile string, keys ...string) error
}

type entryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db}
}

// Queries use ? placeholders and Rebind so the same SQL runs on SQLite,
// PostgreSQL and MySQL.

func (r *entryRepository) Get(ctx context.Context, profile, key string) (string, error) {
	var value string
	query := r.db.Rebind(`SELECT entry_value FROM session_entries WHERE profile = ? AND entry_key = ?`)

	err := r.db.GetContext(ctx, &value, query, profile, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrEntryNotFound
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// Put writes all values in one transaction: either every key is replaced or
// none is.
func (r *entryRepository) Put(ctx context.Context, profile string, values map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := tx.Rebind(`DELETE FROM session_entries WHERE profile = ? AND entry_key = ?`)
	ins := tx.Rebind(`INSERT INTO session_entries (profile, entry_key, entry_value, updated_at) VALUES (?, ?, ?, ?)`)
	now := time.Now().UTC()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, del, profile, key); err != nil {
			return fmt.Errorf("failed to replace %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, ins, profile, key, value, now); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (r *entryRepository) Delete(ctx context.Context, profile string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM session_entries WHERE profile = ? AND entry_key IN (?)`, profile, keys)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
