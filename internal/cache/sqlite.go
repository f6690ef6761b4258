package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// SQLiteStore keeps one row per cache key.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS cache_records (
		key        TEXT PRIMARY KEY,
		timestamp  INTEGER NOT NULL,
		data       BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With().Str("component", "cache.sqlite").Logger(),
	}, nil
}

// Read returns the record for key.
func (s *SQLiteStore) Read(ctx context.Context, key string) (*Record, bool) {
	var rec Record
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT timestamp, data FROM cache_records WHERE key = ?`, key).
		Scan(&rec.Timestamp, &data)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Debug().Err(err).Str("key", key).Msg("sqlite read failed")
		}
		return nil, false
	}
	rec.Data = data
	if !rec.valid() {
		return nil, false
	}
	return &rec, true
}

// Write upserts rec under key.
func (s *SQLiteStore) Write(ctx context.Context, key string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_records (key, timestamp, data) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET timestamp = excluded.timestamp, data = excluded.data`,
		key, rec.Timestamp, []byte(rec.Data))
	if err != nil {
		return fmt.Errorf("sqlite upsert %s: %w", key, err)
	}
	return nil
}

// Ping checks the database, used by the readiness probe.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
