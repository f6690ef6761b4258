package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps each record as a JSON string under prefix+key.
type RedisStore struct {
	client *redis.Client
	prefix string
	expiry atomic.Int64
	logger zerolog.Logger
}

// NewRedisStore wraps an existing client. expiry <= 0 keeps keys until they
// are overwritten; freshness is always decided from the record timestamp.
func NewRedisStore(client *redis.Client, prefix string, expiry time.Duration, logger zerolog.Logger) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "cache.redis").Logger(),
	}
	s.SetExpiry(expiry)
	return s
}

// ExpiryFor is the key lifetime used for a cache timeout: twice the larger of
// the timeout and one hour.
func ExpiryFor(timeout time.Duration) time.Duration {
	return 2 * max(timeout, time.Hour)
}

// SetExpiry changes the lifetime applied by later writes.
func (s *RedisStore) SetExpiry(d time.Duration) {
	s.expiry.Store(int64(d))
}

// Read returns the record for key.
func (s *RedisStore) Read(ctx context.Context, key string) (*Record, bool) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug().Err(err).Str("key", key).Msg("redis read failed")
		}
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil || !rec.valid() {
		s.logger.Debug().Err(err).Str("key", key).Msg("redis record corrupt, treating as miss")
		return nil, false
	}
	return &rec, true
}

// Write stores rec under key.
func (s *RedisStore) Write(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, time.Duration(s.expiry.Load())).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection, used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
