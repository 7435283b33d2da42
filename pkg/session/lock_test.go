package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
)

type nopStore struct{}

func (nopStore) Append(context.Context, string, domain.HistoryEntry) error { return nil }
func (nopStore) List(context.Context, string) ([]domain.HistoryEntry, error) {
	return nil, nil
}
func (nopStore) Trim(context.Context, string, int) error   { return nil }
func (nopStore) Clear(context.Context, string) error       { return nil }
func (nopStore) Sessions(context.Context) ([]string, error) { return nil, nil }

type countingLocker struct {
	locks, unlocks int
	ttl            time.Duration
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locks++
	l.ttl = ttl
	return func(context.Context) error {
		l.unlocks++
		return nil
	}, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Append(ctx, sid, domain.HistoryEntry{})
		_ = mgr.Clear(ctx, sid)
	}

	// Every lock entry must be released once its callers are done.
	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Clear", lockCount)
	}
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr := NewManager(nopStore{}, WithLocker(locker), WithLockTTL(5*time.Second))
	ctx := context.Background()

	if _, err := mgr.Append(ctx, "s1", domain.HistoryEntry{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.Clear(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locker.locks != 2 || locker.unlocks != 2 {
		t.Errorf("expected 2 locks and 2 unlocks, got %d/%d", locker.locks, locker.unlocks)
	}
	if locker.ttl != 5*time.Second {
		t.Errorf("expected ttl 5s, got %v", locker.ttl)
	}
}
