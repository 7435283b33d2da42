package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/aretw0/gss/pkg/domain"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.HistoryEntry
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.HistoryEntry),
	}
}

// Append stores a copy of the entry.
func (s *Store) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = append(s.data[sessionID], clone(entry))
	return nil
}

// List returns copies so callers cannot mutate the store through the result.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.data[sessionID]
	out := make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = clone(e)
	}
	return out, nil
}

// Trim keeps the newest keep entries.
func (s *Store) Trim(ctx context.Context, sessionID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.data[sessionID]
	if keep < 0 {
		keep = 0
	}
	if len(entries) <= keep {
		return nil
	}
	s.data[sessionID] = append([]domain.HistoryEntry(nil), entries[len(entries)-keep:]...)
	if keep == 0 {
		delete(s.data, sessionID)
	}
	return nil
}

// Clear removes the session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sessions returns the IDs of sessions with entries, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}

func clone(e domain.HistoryEntry) domain.HistoryEntry {
	if e.Payload != nil {
		e.Payload = append(json.RawMessage(nil), e.Payload...)
	}
	return e
}
