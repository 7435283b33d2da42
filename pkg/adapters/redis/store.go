package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/gss/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "gss:history:"

// farFuture is the index score of sessions that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.HistoryStore using Redis.
// Each session is a list of JSON entries; a sorted set indexes sessions by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of a session's history, refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to build a Locker sharing the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Prefix returns the key prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Append pushes the entry and refreshes the session's expiry and index score.
func (s *Store) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key(sessionID), data)

	score := float64(farFuture)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.ttl)
		score = float64(time.Now().Add(s.ttl).Unix())
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: sessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// List returns the session's entries in chronological order.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(vals))
	for _, v := range vals {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Trim keeps the newest keep entries.
func (s *Store) Trim(ctx context.Context, sessionID string, keep int) error {
	if keep <= 0 {
		return s.Clear(ctx, sessionID)
	}
	if err := s.client.LTrim(ctx, s.key(sessionID), int64(-keep), -1).Err(); err != nil {
		return fmt.Errorf("failed to trim redis list: %w", err)
	}
	return nil
}

// Clear removes the session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear redis history: %w", err)
	}
	return nil
}

// Sessions returns sessions from the index, lazily dropping expired ones.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
