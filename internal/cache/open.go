package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Layout  Layout
	Path    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisExpiry   time.Duration

	SQLitePath string

	PostgresDSN string
}

// Handle is an opened store plus what the binary needs to probe and close it.
type Handle struct {
	Store
	ping      func(context.Context) error
	close     func() error
	setExpiry func(time.Duration)
}

// SetTimeout keeps backend key expiry in step with a new cache timeout.
// Backends without expiry ignore it.
func (h *Handle) SetTimeout(timeout time.Duration) {
	if h.setExpiry != nil {
		h.setExpiry(ExpiryFor(timeout))
	}
}

// Ping checks the backend is reachable. File stores are always ready.
func (h *Handle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

// Close releases backend connections.
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Open builds the store described by opts.
func Open(opts Options, logger zerolog.Logger) (*Handle, error) {
	switch opts.Backend {
	case "", BackendFile:
		return &Handle{Store: NewFileStore(opts.Path, opts.Layout, logger)}, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr, Password: opts.RedisPassword, DB: opts.RedisDB})
		s := NewRedisStore(rdb, opts.RedisPrefix, opts.RedisExpiry, logger)
		return &Handle{Store: s, ping: s.Ping, close: rdb.Close, setExpiry: s.SetExpiry}, nil

	case BackendSQLite:
		s, err := NewSQLiteStore(opts.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: s, ping: s.Ping, close: s.Close}, nil

	case BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := NewPostgresStore(ctx, opts.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: s, ping: s.Ping, close: s.Close}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
