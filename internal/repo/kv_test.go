package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/growth-logbook/backend/internal/repo"
	"github.com/pkordes/growth-logbook/backend/testutil"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// newPgStore opens a transaction against the test database and returns a
// KVStore backed by it. The transaction is rolled back when the test ends.
func newPgStore(t *testing.T) repo.KVStore {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewPgKVStore(tx)
}

// stores returns every backend under test. The Postgres entry skips itself
// when TEST_DATABASE_URL is not set.
func stores() map[string]func(t *testing.T) repo.KVStore {
	return map[string]func(t *testing.T) repo.KVStore{
		"bolt":     func(t *testing.T) repo.KVStore { return testutil.NewBoltKVStore(t) },
		"postgres": newPgStore,
	}
}

func TestKVStore_GetMissingKey(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			got := doc{Name: "untouched"}
			found, err := s.Get(context.Background(), "missing", &got)

			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, "untouched", got.Name)
		})
	}
}

func TestKVStore_SetThenGet(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "k", doc{Name: "北京市", Items: []string{"a", "b"}}))

			var got doc
			found, err := s.Get(ctx, "k", &got)

			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "北京市", got.Name)
			assert.Equal(t, []string{"a", "b"}, got.Items)
		})
	}
}

func TestKVStore_SetOverwrites(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "k", doc{Name: "first"}))
			require.NoError(t, s.Set(ctx, "k", doc{Name: "second"}))

			var got doc
			_, err := s.Get(ctx, "k", &got)

			require.NoError(t, err)
			assert.Equal(t, "second", got.Name)
		})
	}
}

func TestKVStore_Delete(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "k", doc{Name: "x"}))
			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"), "deleting a missing key is not an error")

			var got doc
			found, err := s.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestBoltKVStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logbook.db")
	ctx := context.Background()

	s, err := repo.NewBoltKVStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", doc{Name: "kept"}))
	require.NoError(t, s.Close())

	reopened, err := repo.NewBoltKVStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	var got doc
	found, err := reopened.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kept", got.Name)
}

func TestBoltKVStore_ClosedStore(t *testing.T) {
	s, err := repo.NewBoltKVStore(filepath.Join(t.TempDir(), "logbook.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	err = s.Set(context.Background(), "k", doc{})
	assert.ErrorIs(t, err, repo.ErrStoreClosed)

	_, err = s.Get(context.Background(), "k", &doc{})
	assert.ErrorIs(t, err, repo.ErrStoreClosed)
}

func TestNewBoltKVStore_InvalidPath(t *testing.T) {
	s, err := repo.NewBoltKVStore(filepath.Join(t.TempDir(), "missing-dir", "logbook.db"))

	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestBoltKVStore_GetMalformedDocument(t *testing.T) {
	s := testutil.NewBoltKVStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "just a string"))

	var got doc
	_, err := s.Get(ctx, "k", &got)

	assert.Error(t, err)
}
