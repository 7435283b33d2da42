package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/gss/pkg/adapters/sqlite"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, open(t, filepath.Join(t.TempDir(), "history.db")))
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, "s1", domain.HistoryEntry{ID: "e1", Function: "x", Mode: domain.Minimize}))
	require.NoError(t, first.Close())

	// Reopening applies nothing new and keeps the data.
	second := open(t, path)
	version, err := second.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	entries, err := second.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Nil(t, entries[0].Payload)
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "history.db"))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", domain.HistoryEntry{ID: "dup"}))
	assert.Error(t, store.Append(ctx, "s1", domain.HistoryEntry{ID: "dup"}))
}
