package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/gss/internal/logging"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates history access, ensuring a single writer per session.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.HistoryStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	maxEntries int // 0 keeps everything
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithMaxEntries caps the history of each session; the oldest entries are dropped.
func WithMaxEntries(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new history Manager with the given store.
func NewManager(store ports.HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Append stamps the entry with an ID, the session and the creation time when missing,
// stores it and applies the MaxEntries cap. The stored entry is returned.
func (m *Manager) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	if err := ValidateID(sessionID); err != nil {
		return entry, err
	}
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return entry, fmt.Errorf("failed to generate entry id: %w", err)
		}
		entry.ID = id.String()
	}
	entry.SessionID = sessionID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now().UTC()
	}

	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if err := m.store.Append(ctx, sessionID, entry); err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}
		if m.maxEntries > 0 {
			if err := m.store.Trim(ctx, sessionID, m.maxEntries); err != nil {
				return fmt.Errorf("failed to trim history: %w", err)
			}
		}
		return nil
	})
	return entry, err
}

// List returns the session's entries, oldest first.
func (m *Manager) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	var entries []domain.HistoryEntry
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		entries, err = m.store.List(ctx, sessionID)
		return err
	})
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, err
}

// Get returns one entry by ID, or domain.ErrSessionNotFound if the session holds no such entry.
func (m *Manager) Get(ctx context.Context, sessionID, entryID string) (domain.HistoryEntry, error) {
	entries, err := m.List(ctx, sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, fmt.Errorf("entry %q: %w", entryID, domain.ErrSessionNotFound)
}

// Clear removes the session's history.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Clear(ctx, sessionID)
	})
}

// Sessions delegates to the store.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	return m.store.Sessions(ctx)
}

// Store returns the underlying history store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
