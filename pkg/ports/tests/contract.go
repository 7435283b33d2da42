package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/gss/pkg/ports"
)

// DistributedLockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func DistributedLockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()

	// 1. Lock and Unlock
	t.Run("Lock_Unlock", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-basic", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Errorf("unexpected error releasing lock: %v", err)
		}

		// Reacquire after release
		unlock, err = locker.Lock(ctx, "contract-basic", 5*time.Second)
		if err != nil {
			t.Fatalf("lock should be free after unlock: %v", err)
		}
		_ = unlock(ctx)
	})

	// 2. Held lock blocks until context is done
	t.Run("Lock_Contended", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-contended", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer func() { _ = unlock(ctx) }()

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(short, "contract-contended", 5*time.Second); err == nil {
			t.Error("expected error acquiring a held lock, got nil")
		}
	})

	// 3. Mutual exclusion
	t.Run("Mutual_Exclusion", func(t *testing.T) {
		ctx := context.Background()
		var inside, maxInside int32
		var wg sync.WaitGroup

		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "contract-mutex", 5*time.Second)
				if err != nil {
					t.Errorf("unexpected error acquiring lock: %v", err)
					return
				}
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				_ = unlock(ctx)
			}()
		}
		wg.Wait()

		if maxInside != 1 {
			t.Errorf("expected at most one holder at a time, saw %d", maxInside)
		}
	})
}
