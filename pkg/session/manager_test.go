package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gss/pkg/adapters/memory"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates a read-modify-write backend with IO latency. Without a per-session
// lock, concurrent appends lose updates.
type SlowStore struct {
	mu   sync.Mutex
	data map[string][]domain.HistoryEntry
}

func (s *SlowStore) snapshot(sessionID string) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryEntry(nil), s.data[sessionID]...)
}

func (s *SlowStore) store(sessionID string, entries []domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]domain.HistoryEntry)
	}
	s.data[sessionID] = entries
}

func (s *SlowStore) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	entries := s.snapshot(sessionID)
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.store(sessionID, append(entries, entry))
	return nil
}

func (s *SlowStore) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	return s.snapshot(sessionID), nil
}

func (s *SlowStore) Trim(ctx context.Context, sessionID string, keep int) error {
	entries := s.snapshot(sessionID)
	if len(entries) > keep {
		s.store(sessionID, entries[len(entries)-keep:])
	}
	return nil
}

func (s *SlowStore) Clear(ctx context.Context, sessionID string) error {
	s.store(sessionID, nil)
	return nil
}

func (s *SlowStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, entries := range s.data {
		if len(entries) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestManager_SerialisesAppends(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	concurrentWrites := 20

	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			_, err := manager.Append(ctx, id, domain.HistoryEntry{Function: fmt.Sprintf("x + %d", val)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := manager.List(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, concurrentWrites, "no append may be lost")
}

func TestManager_AppendStampsEntry(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	manager := session.NewManager(memory.NewStore(), session.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	stored, err := manager.Append(ctx, "s1", domain.HistoryEntry{Function: "x**2", SessionID: "spoofed"})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "s1", stored.SessionID)
	assert.Equal(t, fixed, stored.CreatedAt)

	got, err := manager.Get(ctx, "s1", stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "x**2", got.Function)

	_, err = manager.Get(ctx, "s1", "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_MaxEntries(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), session.WithMaxEntries(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := manager.Append(ctx, "capped", domain.HistoryEntry{Function: fmt.Sprintf("x + %d", i)})
		require.NoError(t, err)
	}

	entries, err := manager.List(ctx, "capped")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "x + 2", entries[0].Function)
	assert.Equal(t, "x + 4", entries[2].Function)
}

func TestManager_ClearAndUnknown(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	entries, err := manager.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = manager.Append(ctx, "s1", domain.HistoryEntry{Function: "x"})
	require.NoError(t, err)
	require.NoError(t, manager.Clear(ctx, "s1"))

	entries, err = manager.List(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManager_RejectsInvalidSessionIDs(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for _, id := range []string{"", "../etc/passwd", "a b", "..", string(make([]byte, session.MaxIDLength+1))} {
		_, err := manager.Append(ctx, id, domain.HistoryEntry{})
		assert.ErrorIs(t, err, domain.ErrInvalidSessionID, "id %q", id)
	}
}

func TestNewID(t *testing.T) {
	a, b := session.NewID(), session.NewID()
	assert.NotEqual(t, a, b)
	assert.NoError(t, session.ValidateID(a))
}
