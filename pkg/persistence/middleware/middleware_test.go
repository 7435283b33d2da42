package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"

	"github.com/aretw0/gss/pkg/adapters/memory"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/persistence/middleware"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.HistoryStore, active []byte, fallback ...[]byte) ports.HistoryStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func entry(id, function string) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID: id, SessionID: "s1", Function: function, A: -1, B: 1, Tolerance: 1e-4,
		Mode: domain.Minimize, Status: domain.StatusConverged,
		Payload: json.RawMessage(`{"x_min":0.5,"plot_data":{"x":[1,2],"y":[3,4]},"nested":{"plot_data":1,"keep":2}}`),
	}
}

func TestEncryption_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryption_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", entry("e1", "x**2 - secret")))

	raw, err := underlying.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Empty(t, raw[0].Function)
	assert.NotContains(t, string(raw[0].Payload), "x_min")
	assert.Contains(t, string(raw[0].Payload), "__encrypted__")
	assert.Equal(t, -1.0, raw[0].A, "bounds stay in clear")

	loaded, err := store.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "x**2 - secret", loaded[0].Function)
	assert.Contains(t, string(loaded[0].Payload), `"x_min":0.5`)
}

func TestEncryption_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, underlying, oldKey).Append(ctx, "s1", entry("e1", "old")))

	rotated := encrypted(t, underlying, newKey, oldKey)
	require.NoError(t, rotated.Append(ctx, "s1", entry("e2", "new")))

	loaded, err := rotated.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "old", loaded[0].Function)
	assert.Equal(t, "new", loaded[1].Function)

	// The old key alone cannot read entries sealed with the new one.
	_, err = encrypted(t, underlying, oldKey).List(ctx, "s1")
	assert.Error(t, err)
}

func TestEncryption_RejectsPlainEntries(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Append(ctx, "s1", entry("e1", "plain")))

	_, err := encrypted(t, underlying, generateKey(t)).List(ctx, "s1")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryption_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: generateKey(t), FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.ErrorContains(t, err, "must be 32 bytes")
}

func TestOmit(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewOmitMiddleware([]string{"^plot_data$"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", entry("e1", "x")))

	loaded, err := store.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.JSONEq(t, `{"x_min":0.5,"nested":{"keep":2}}`, string(loaded[0].Payload))
	assert.Equal(t, "x", loaded[0].Function)

	_, err = middleware.NewOmitMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_OmitThenEncrypt(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	omit, err := middleware.NewOmitMiddleware([]string{"plot"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	require.NoError(t, err)

	store := middleware.Chain(underlying, omit, enc)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s1", entry("e1", "x")))

	loaded, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, string(loaded[0].Payload), "plot_data")
	assert.Contains(t, string(loaded[0].Payload), "x_min")

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, sessions)
}
