// Package app holds the start-up wiring shared by the API server and
// tripctl: logger construction and opening the configured trip store.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/growth-logbook/backend/internal/config"
	"github.com/pkordes/growth-logbook/backend/internal/repo"
	"github.com/pkordes/growth-logbook/backend/migrations"
)

// NewLogger returns a JSON slog.Logger writing to w at the named level.
// An unknown level falls back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// OpenStore opens the key-value store selected by cfg.StoreDriver.
// For postgres the pool is pinged and pending migrations are applied before
// the store is returned. The returned close function releases the backend.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.KVStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		store, err := repo.NewBoltKVStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("app.OpenStore: %w", err)
		}
		log.InfoContext(ctx, "bolt store opened", "path", cfg.BoltPath)
		return store, func() { _ = store.Close() }, nil

	case config.DriverPostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("app.OpenStore: create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("app.OpenStore: ping: %w", err)
		}
		if err := migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.InfoContext(ctx, "database connection established")
		return repo.NewPgKVStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("app.OpenStore: unsupported driver %q", cfg.StoreDriver)
	}
}

// migrate applies pending goose migrations through a database/sql view of pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("app.migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("app.migrate: %w", err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}
