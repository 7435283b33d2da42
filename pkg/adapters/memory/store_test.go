package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/gss/pkg/adapters/memory"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	entry := domain.HistoryEntry{ID: "1", Payload: []byte(`{"x_min":1}`)}
	require.NoError(t, store.Append(ctx, "s", entry))
	entry.Payload[2] = 'y'

	entries, err := store.List(ctx, "s")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x_min":1}`, string(entries[0].Payload))

	entries[0].Function = "mutated"
	again, err := store.List(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, again[0].Function)
}
