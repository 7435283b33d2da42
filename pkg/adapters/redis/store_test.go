package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/gss/pkg/adapters/redis"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/aretw0/gss/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunHistoryStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	err := store.Append(ctx, sessionID, domain.HistoryEntry{ID: "1", Function: "x"})
	require.NoError(t, err)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	entries, err := store.List(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The index is pruned against the wall clock, so wait past the TTL.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	err := store.Append(ctx, sessionID, domain.HistoryEntry{ID: "1"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:session:my-session"), "Expected list with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.Equal(t, "custom:app:", store.Prefix())

	list, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_Ping(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	assert.NoError(t, store.Ping(context.Background()))
	assert.Same(t, client, store.Client())
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.DistributedLockerContractTest(t, redis.NewLocker(client, "test:"))
}

func TestRedisLocker_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_ReleaseAfterExpiryKeepsNewHolder(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlockFirst, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	unlockSecond, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	// The stale holder must not release the new holder's lock.
	require.NoError(t, unlockFirst(ctx))
	assert.True(t, mr.Exists("test:lock:k"))

	require.NoError(t, unlockSecond(ctx))
	assert.False(t, mr.Exists("test:lock:k"))
}
