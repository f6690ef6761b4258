package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgDB is the part of *pgxpool.Pool the store uses.
type pgDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps one row per cache key in a shared Postgres database, so
// several service replicas can serve from the same cache.
type PostgresStore struct {
	db     pgDB
	logger zerolog.Logger
}

// NewPostgresStore connects to dsn and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn string, logger zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS cache_records (
		key        TEXT PRIMARY KEY,
		timestamp  BIGINT NOT NULL,
		data       BYTEA NOT NULL
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return newPostgresStore(pool, logger), nil
}

func newPostgresStore(db pgDB, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With().Str("component", "cache.postgres").Logger(),
	}
}

// Read returns the record for key.
func (s *PostgresStore) Read(ctx context.Context, key string) (*Record, bool) {
	var rec Record
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT timestamp, data FROM cache_records WHERE key = $1`, key).
		Scan(&rec.Timestamp, &data)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().Err(err).Str("key", key).Msg("postgres read failed")
		}
		return nil, false
	}
	rec.Data = data
	if !rec.valid() {
		s.logger.Debug().Str("key", key).Msg("postgres record corrupt, treating as miss")
		return nil, false
	}
	return &rec, true
}

// Write upserts rec under key.
func (s *PostgresStore) Write(ctx context.Context, key string, rec Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cache_records (key, timestamp, data) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET timestamp = EXCLUDED.timestamp, data = EXCLUDED.data`,
		key, rec.Timestamp, []byte(rec.Data))
	if err != nil {
		return fmt.Errorf("postgres upsert %s: %w", key, err)
	}
	return nil
}

// Ping checks the database, used by the readiness probe.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
