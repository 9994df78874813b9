// redis.go - Redis-backed key-value store used for session tokens.
//
// Thin wrapper over go-redis: every call is a round trip, nothing is
// cached in-process, so a revoked token is invisible on the very next
// lookup from any replica of this service.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyValue is the contract the session layer needs from its backing store.
// RedisStore implements it in production; tests substitute an in-memory
// fake.
type KeyValue interface {
	// IsAlive reports current connectivity. It never returns an error;
	// a degraded connection reads as false.
	IsAlive() bool

	// Get returns the value for key. ok is false when the key was never
	// set or has expired; the two cases are indistinguishable.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes key with a positive ttl, overwriting any existing value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Deleting a missing key is a no-op, not an error.
	Del(ctx context.Context, key string) error
}

// RedisStore wraps a shared redis client handle. The handle is opened once
// at process start and reused by every request; go-redis clients are safe
// for concurrent use.
type RedisStore struct {
	liveness
	client  *redis.Client
	timeout time.Duration
}

var _ KeyValue = (*RedisStore)(nil)

// NewRedisStore connects to addr. The connection is established in the
// background; IsAlive reports false until the first ping succeeds.
func NewRedisStore(addr string, timeout time.Duration) *RedisStore {
	s := &RedisStore{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		timeout: timeout,
	}
	s.liveness.init()
	s.startMonitor(s.probe, defaultProbeInterval, timeout)
	return s
}

func (s *RedisStore) probe(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get fetches key. A missing or expired key is (_, false, nil), never an
// error.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, ErrStoreUnavailable)
	}
	return val, true, nil
}

// Set writes key=value with the given ttl. A non-positive ttl is a caller
// bug and is rejected before touching the network.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("redis set %q: ttl must be positive", key)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, ErrStoreUnavailable)
	}
	return nil
}

// Del removes key. Redis returns the number of keys removed, which we
// ignore: deleting a missing key succeeds.
func (s *RedisStore) Del(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, ErrStoreUnavailable)
	}
	return nil
}

// Close stops the liveness monitor and releases the client.
func (s *RedisStore) Close() error {
	s.stopMonitor()
	return s.client.Close()
}
