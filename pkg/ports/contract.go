package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Append and List", func(t *testing.T) {
		defer func() { _ = store.Clear(ctx, sessionID) }()

		first := contractEntry(sessionID, 1)
		second := contractEntry(sessionID, 2)
		require.NoError(t, store.Append(ctx, sessionID, first))
		require.NoError(t, store.Append(ctx, sessionID, second))

		entries, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		// Chronological order
		assert.Equal(t, first.ID, entries[0].ID)
		assert.Equal(t, second.ID, entries[1].ID)

		got := entries[0]
		assert.Equal(t, first.SessionID, got.SessionID)
		assert.Equal(t, first.Function, got.Function)
		assert.Equal(t, first.A, got.A)
		assert.Equal(t, first.B, got.B)
		assert.Equal(t, first.Tolerance, got.Tolerance)
		assert.Equal(t, first.Mode, got.Mode)
		assert.Equal(t, first.Status, got.Status)
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "created_at survives a round trip")
		assert.JSONEq(t, string(first.Payload), string(got.Payload))
	})

	t.Run("List Unknown Session", func(t *testing.T) {
		entries, err := store.List(ctx, "non-existent-"+sessionID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID, contractEntry(sessionID, 1)))
		require.NoError(t, store.Clear(ctx, sessionID))

		entries, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, entries, "List after Clear should be empty")

		// Clearing twice is not an error
		assert.NoError(t, store.Clear(ctx, sessionID))
	})

	t.Run("Trim", func(t *testing.T) {
		defer func() { _ = store.Clear(ctx, sessionID) }()

		var ids []string
		for i := 1; i <= 5; i++ {
			e := contractEntry(sessionID, i)
			ids = append(ids, e.ID)
			require.NoError(t, store.Append(ctx, sessionID, e))
		}
		require.NoError(t, store.Trim(ctx, sessionID, 2))

		entries, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, ids[3], entries[0].ID)
		assert.Equal(t, ids[4], entries[1].ID)

		// Trimming above the current size keeps everything
		require.NoError(t, store.Trim(ctx, sessionID, 10))
		entries, err = store.List(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Sessions Are Isolated", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		defer func() {
			_ = store.Clear(ctx, id1)
			_ = store.Clear(ctx, id2)
		}()

		require.NoError(t, store.Append(ctx, id1, contractEntry(id1, 1)))
		require.NoError(t, store.Append(ctx, id2, contractEntry(id2, 1)))
		require.NoError(t, store.Append(ctx, id2, contractEntry(id2, 2)))

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)

		entries, err := store.List(ctx, id1)
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		require.NoError(t, store.Clear(ctx, id2))
		sessions, err = store.Sessions(ctx)
		require.NoError(t, err)
		assert.NotContains(t, sessions, id2)
	})

	t.Run("Concurrent Sessions", func(t *testing.T) {
		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("%s-c%d", sessionID, i)
				assert.NoError(t, store.Append(ctx, id, contractEntry(id, i)))
			}(i)
		}
		wg.Wait()

		for i := 0; i < writers; i++ {
			id := fmt.Sprintf("%s-c%d", sessionID, i)
			entries, err := store.List(ctx, id)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			_ = store.Clear(ctx, id)
		}
	})
}

func contractEntry(sessionID string, n int) domain.HistoryEntry {
	payload, _ := json.Marshal(map[string]any{"x_min": -1.5, "f_min": -0.25, "num_iterations": 24})
	return domain.HistoryEntry{
		ID:        fmt.Sprintf("%s-entry-%d-%d", sessionID, n, time.Now().UnixNano()),
		SessionID: sessionID,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, n, 0, time.UTC),
		Function:  "x**2 + 3*x + 2",
		A:         -5,
		B:         5,
		Tolerance: 1e-4,
		Mode:      domain.Minimize,
		Status:    domain.StatusConverged,
		Payload:   payload,
	}
}
