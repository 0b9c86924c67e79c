// Package dedup provides a Redis-backed billing.ClaimStore.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyKey is returned when Claim is called without a key.
var ErrEmptyKey = errors.New("dedup: empty claim key")

// RedisStore claims keys with SET NX so concurrent deliveries of one provider
// event agree on a single owner.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix namespaces every key, e.g. per deployment.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a RedisStore. Panics if client is nil.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	if client == nil {
		panic("dedup: redis client is required")
	}
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Claim returns true when key was free and now belongs to the caller for ttl.
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: claim %q: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so the key can be claimed again.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("dedup: release %q: %w", key, err)
	}
	return nil
}
