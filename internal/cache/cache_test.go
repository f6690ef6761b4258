package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = zerolog.New(io.Discard)

func sampleRecord(ts int64) Record {
	return Record{Timestamp: ts, Data: json.RawMessage(`{"Reservations":{"Reservation":[]}}`)}
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	rec := NewRecord(json.RawMessage(`{}`), now.Add(-5*time.Minute))

	tests := []struct {
		name    string
		rec     *Record
		timeout time.Duration
		want    bool
	}{
		{"younger than timeout", &rec, 10 * time.Minute, true},
		{"age equals timeout", &rec, 5 * time.Minute, false},
		{"older than timeout", &rec, time.Minute, false},
		{"zero timeout disables cache", &rec, 0, false},
		{"negative timeout", &rec, -time.Minute, false},
		{"nil record", nil, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFresh(tt.rec, tt.timeout, now))
		})
	}
}

func TestIsFresh_StaleWheneverAgeReachesTimeout(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	for _, timeout := range []time.Duration{time.Millisecond, time.Second, time.Minute, 24 * time.Hour} {
		for _, age := range []time.Duration{timeout, timeout + time.Millisecond, 2 * timeout} {
			rec := NewRecord(json.RawMessage(`{}`), now.Add(-age))
			assert.False(t, IsFresh(&rec, timeout, now), "timeout=%s age=%s", timeout, age)
		}
	}
}

func TestFileStore_Single(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	s := NewFileStore(path, LayoutSingle, testLogger)

	_, ok := s.Read(ctx, "latest")
	assert.False(t, ok, "missing file is a miss")

	require.NoError(t, s.Write(ctx, "latest", sampleRecord(1000)))

	got, ok := s.Read(ctx, "anything")
	require.True(t, ok)
	assert.Equal(t, int64(1000), got.Timestamp)
	assert.JSONEq(t, `{"Reservations":{"Reservation":[]}}`, string(got.Data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1000,"data":{"Reservations":{"Reservation":[]}}}`, string(raw))

	require.NoError(t, s.Write(ctx, "latest", sampleRecord(2000)))
	got, ok = s.Read(ctx, "latest")
	require.True(t, ok)
	assert.Equal(t, int64(2000), got.Timestamp)
}

func TestFileStore_CorruptIsMiss(t *testing.T) {
	ctx := context.Background()
	for _, layout := range []Layout{LayoutSingle, LayoutByDay} {
		t.Run(string(layout), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
			s := NewFileStore(path, layout, testLogger)

			_, ok := s.Read(ctx, "2025-08-10")
			assert.False(t, ok)

			require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(1)))
			_, ok = s.Read(ctx, "2025-08-10")
			assert.True(t, ok, "write replaces a corrupt file")
		})
	}
}

func TestFileStore_ByDay(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	s := NewFileStore(path, LayoutByDay, testLogger)

	require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(10)))
	require.NoError(t, s.Write(ctx, "2025-08-11", sampleRecord(11)))

	a, ok := s.Read(ctx, "2025-08-10")
	require.True(t, ok)
	assert.Equal(t, int64(10), a.Timestamp)

	b, ok := s.Read(ctx, "2025-08-11")
	require.True(t, ok)
	assert.Equal(t, int64(11), b.Timestamp)

	_, ok = s.Read(ctx, "2025-08-12")
	assert.False(t, ok)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var file map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &file))
	assert.Len(t, file["byDay"], 2)
}

func TestFileStore_ConcurrentWritersLeaveNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	// Two stores on one path stand in for two processes sharing the file.
	stores := []*FileStore{
		NewFileStore(path, LayoutByDay, testLogger),
		NewFileStore(path, LayoutByDay, testLogger),
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(s *FileStore) {
			defer wg.Done()
			assert.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(int64(i))))
		}(stores[i%2])
	}
	wg.Wait()

	_, ok := stores[0].Read(ctx, "2025-08-10")
	assert.True(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache.json", entries[0].Name())
}

func TestFileStore_InvalidRecordIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timestamp":0,"data":null}`), 0o644))

	_, ok := NewFileStore(path, LayoutSingle, testLogger).Read(context.Background(), "latest")
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStore(rdb, "hotelstats:", time.Hour, testLogger)
	require.NoError(t, s.Ping(ctx))

	_, ok := s.Read(ctx, "latest")
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "latest", sampleRecord(42)))
	got, ok := s.Read(ctx, "latest")
	require.True(t, ok)
	assert.Equal(t, int64(42), got.Timestamp)
	assert.True(t, mr.Exists("hotelstats:latest"))
	assert.Equal(t, time.Hour, mr.TTL("hotelstats:latest"))

	require.NoError(t, mr.Set("hotelstats:broken", "garbage"))
	_, ok = s.Read(ctx, "broken")
	assert.False(t, ok)

	mr.Close()
	_, ok = s.Read(ctx, "latest")
	assert.False(t, ok, "connection errors are misses")
	assert.Error(t, s.Write(ctx, "latest", sampleRecord(43)))
}

func TestRedisStore_SetExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	h, err := Open(Options{Backend: BackendRedis, RedisAddr: mr.Addr(), RedisPrefix: "hs:", RedisExpiry: ExpiryFor(5 * time.Minute)}, testLogger)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Write(ctx, "a", sampleRecord(1)))
	assert.Equal(t, 2*time.Hour, mr.TTL("hs:a"))

	h.SetTimeout(3 * time.Hour)
	require.NoError(t, h.Write(ctx, "b", sampleRecord(2)))
	assert.Equal(t, 6*time.Hour, mr.TTL("hs:b"))
	assert.Equal(t, 2*time.Hour, mr.TTL("hs:a"), "existing keys keep their expiry")

	// File stores have no expiry to adjust.
	f, err := Open(Options{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "c.json")}, testLogger)
	require.NoError(t, err)
	f.SetTimeout(time.Hour)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "cache.db"), testLogger)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Read(ctx, "2025-08-10")
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(1)))
	require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(2)))

	got, ok := s.Read(ctx, "2025-08-10")
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Timestamp)
	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore_FailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.FailWrites(errors.New("disk full"))

	assert.Error(t, m.Write(ctx, "k", sampleRecord(1)))
	assert.Equal(t, 1, m.Writes())
	_, ok := m.Read(ctx, "k")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	h, err := Open(Options{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "c.json")}, testLogger)
	require.NoError(t, err)
	assert.NoError(t, h.Ping(context.Background()))
	assert.NoError(t, h.Close())

	_, err = Open(Options{Backend: "memcached"}, testLogger)
	assert.Error(t, err)
}

type pgRow struct {
	timestamp int64
	data      []byte
}

// fakePG stands in for a pgxpool.Pool with an in-memory cache_records table.
type fakePG struct {
	rows     map[string]pgRow
	queries  []string
	queryErr error
	execErr  error
	closed   bool
}

func newFakePG() *fakePG {
	return &fakePG{rows: make(map[string]pgRow)}
}

type fakeScan struct {
	row pgRow
	err error
}

func (r fakeScan) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.row.timestamp
	*dest[1].(*[]byte) = append([]byte(nil), r.row.data...)
	return nil
}

func (f *fakePG) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	if f.queryErr != nil {
		return fakeScan{err: f.queryErr}
	}
	row, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeScan{err: pgx.ErrNoRows}
	}
	return fakeScan{row: row}
}

func (f *fakePG) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	f.rows[args[0].(string)] = pgRow{timestamp: args[1].(int64), data: args[2].([]byte)}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakePG) Ping(context.Context) error { return f.queryErr }

func (f *fakePG) Close() { f.closed = true }

func TestPostgresStore_Fake(t *testing.T) {
	ctx := context.Background()
	db := newFakePG()
	s := newPostgresStore(db, testLogger)

	_, ok := s.Read(ctx, "2025-08-10")
	assert.False(t, ok, "no row is a miss")

	require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(1)))
	require.NoError(t, s.Write(ctx, "2025-08-10", sampleRecord(2)))
	assert.Contains(t, db.queries[len(db.queries)-1], "ON CONFLICT (key) DO UPDATE")
	assert.Len(t, db.rows, 1)

	got, ok := s.Read(ctx, "2025-08-10")
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Timestamp)
	assert.JSONEq(t, string(sampleRecord(2).Data), string(got.Data))

	db.rows["corrupt"] = pgRow{timestamp: 5, data: []byte("{not json")}
	_, ok = s.Read(ctx, "corrupt")
	assert.False(t, ok, "corrupt row is a miss")

	db.rows["zero"] = pgRow{timestamp: 0, data: []byte(`{}`)}
	_, ok = s.Read(ctx, "zero")
	assert.False(t, ok, "row without timestamp is a miss")

	db.execErr = errors.New("read-only transaction")
	assert.ErrorContains(t, s.Write(ctx, "2025-08-11", sampleRecord(3)), "read-only transaction")

	db.queryErr = errors.New("connection reset")
	_, ok = s.Read(ctx, "2025-08-10")
	assert.False(t, ok, "query errors are misses")
	assert.Error(t, s.Ping(ctx))

	require.NoError(t, s.Close())
	assert.True(t, db.closed)
}

// Runs against a real database only when one is provided.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("HOTELSTATS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HOTELSTATS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn, testLogger)
	require.NoError(t, err)
	defer s.Close()

	key := "test-" + time.Now().Format("150405.000000")
	_, ok := s.Read(ctx, key)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, key, sampleRecord(1)))
	require.NoError(t, s.Write(ctx, key, sampleRecord(2)))

	got, ok := s.Read(ctx, key)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Timestamp)
	assert.JSONEq(t, string(sampleRecord(2).Data), string(got.Data))
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	_, err := Open(Options{Backend: BackendPostgres, PostgresDSN: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"}, testLogger)
	assert.Error(t, err)
}
