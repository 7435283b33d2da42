package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/gss/pkg/adapters/file"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "abc", domain.HistoryEntry{ID: "1", Function: "x**2"}))

	data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id": "abc"`)
	assert.Contains(t, string(data), `"function": "x**2"`)

	// No temp files are left behind
	matches, err := filepath.Glob(filepath.Join(dir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	err := store.Append(context.Background(), "../escape", domain.HistoryEntry{ID: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
}

func TestFileStore_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).List(context.Background(), "bad")
	assert.Error(t, err)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does", "not", "exist"))
	sessions, err := store.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
