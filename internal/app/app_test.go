package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/growth-logbook/backend/internal/app"
	"github.com/pkordes/growth-logbook/backend/internal/config"
	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/repo"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(&buf, "warn")

	log.Info("dropped")
	log.Warn("kept", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	app.NewLogger(&buf, "loud").Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestOpenStore_Bolt(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{StoreDriver: config.DriverBolt, BoltPath: filepath.Join(t.TempDir(), "logbook.db")}
	log := app.NewLogger(&bytes.Buffer{}, "info")

	kv, closeFn, err := app.OpenStore(ctx, cfg, log)
	require.NoError(t, err)

	trips := repo.NewTripRepo(kv)
	require.NoError(t, trips.ReplaceAll(ctx, []domain.TripRecord{{Province: "北京市"}}))
	closeFn()

	kv, closeFn, err = app.OpenStore(ctx, cfg, log)
	require.NoError(t, err)
	defer closeFn()

	got, err := repo.NewTripRepo(kv).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "北京市", got[0].Province)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := app.OpenStore(context.Background(), config.Config{StoreDriver: "sqlite"}, app.NewLogger(&bytes.Buffer{}, "info"))
	assert.ErrorContains(t, err, "sqlite")
}

// TestOpenStore_Postgres runs the migrations against TEST_DATABASE_URL.
func TestOpenStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()
	cfg := config.Config{StoreDriver: config.DriverPostgres, DatabaseURL: dsn}

	kv, closeFn, err := app.OpenStore(ctx, cfg, app.NewLogger(&bytes.Buffer{}, "info"))
	require.NoError(t, err)
	defer closeFn()

	const key = "app_test_probe"
	require.NoError(t, kv.Set(ctx, key, []string{"ok"}))
	t.Cleanup(func() { _ = kv.Delete(ctx, key) })

	var got []string
	found, err := kv.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"ok"}, got)
}
