// Package repo contains all persistence logic for the growth logbook.
// Data is kept as JSON documents in a key-value store; each backend has its
// own file with a KVStore implementation. No business logic lives here.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KVStore persists JSON documents under string keys.
// The trip repo depends on this interface, not on a concrete backend, so the
// same collection logic runs on a local bbolt file or on Postgres.
type KVStore interface {
	// Get decodes the document stored under key into dest.
	// found is false (and dest untouched) when the key does not exist.
	Get(ctx context.Context, key string, dest any) (found bool, err error)

	// Set encodes value as JSON and stores it under key, replacing any
	// previous document.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// pgKVStore is the Postgres implementation of KVStore.
// Documents live in the kv_entries table created by the migrations package.
type pgKVStore struct {
	db db
}

// NewPgKVStore constructs a KVStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPgKVStore(db db) KVStore {
	return &pgKVStore{db: db}
}

// Get loads and decodes the document stored under key.
func (s *pgKVStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	const q = `SELECT value FROM kv_entries WHERE key = @key`

	var raw []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("repo.PgKVStore.Get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("repo.PgKVStore.Get: decode %q: %w", key, err)
	}
	return true, nil
}

// Set upserts the JSON encoding of value under key.
func (s *pgKVStore) Set(ctx context.Context, key string, value any) error {
	const q = `
		INSERT INTO kv_entries (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = now()`

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("repo.PgKVStore.Set: encode %q: %w", key, err)
	}

	// Passing a string lets Postgres cast the parameter to jsonb.
	args := pgx.NamedArgs{"key": key, "value": string(raw)}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.PgKVStore.Set: %w", err)
	}
	return nil
}

// Delete removes the row for key, if any.
func (s *pgKVStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entries WHERE key = @key`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.PgKVStore.Delete: %w", err)
	}
	return nil
}
