// Package fetch combines the cache store and the vendor client: serve a fresh
// cached payload when there is one, otherwise call the vendor and refresh the
// cache in the background.
package fetch

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hotelstats/internal/cache"
	"hotelstats/internal/metrics"
	"hotelstats/internal/vendor"
)

// Upstream is the part of vendor.Client the orchestrator calls.
type Upstream interface {
	Fetch(ctx context.Context, p vendor.Params) (json.RawMessage, error)
}

// Result is a payload together with where it came from.
type Result struct {
	Data      json.RawMessage
	FromCache bool
	FetchedAt time.Time
}

// Orchestrator implements the cache-first fetch policy.
//
// There is no fallback to stale data: when the vendor call fails the error is
// returned even if an expired record exists.
type Orchestrator struct {
	store    cache.Store
	upstream Upstream
	timeout  atomic.Int64
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	// writeTimeout bounds a background cache write.
	writeTimeout time.Duration
	pending      sync.WaitGroup

	now func() time.Time
}

// New creates an orchestrator. timeout is the cache lifetime; zero disables
// cache reads.
func New(store cache.Store, upstream Upstream, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		upstream:     upstream,
		metrics:      m,
		logger:       logger.With().Str("component", "fetch").Logger(),
		writeTimeout: 10 * time.Second,
		now:          time.Now,
	}
	o.SetTimeout(timeout)
	return o
}

// SetTimeout changes the cache lifetime; safe to call while serving.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	o.timeout.Store(int64(d))
}

// Timeout returns the current cache lifetime.
func (o *Orchestrator) Timeout() time.Duration {
	return time.Duration(o.timeout.Load())
}

// FetchData returns the payload for key.
func (o *Orchestrator) FetchData(ctx context.Context, key string, p vendor.Params) (*Result, error) {
	now := o.now()
	timeout := o.Timeout()

	if timeout > 0 {
		rec, ok := o.store.Read(ctx, key)
		switch {
		case !ok:
			o.metrics.IncCacheLookup("miss")
		case cache.IsFresh(rec, timeout, now):
			o.metrics.IncCacheLookup("hit")
			o.logger.Debug().Str("key", key).Dur("age", rec.Age(now)).Msg("cache hit")
			return &Result{Data: rec.Data, FromCache: true, FetchedAt: time.UnixMilli(rec.Timestamp)}, nil
		default:
			o.metrics.IncCacheLookup("stale")
		}
	} else {
		o.metrics.IncCacheLookup("disabled")
	}

	data, err := o.upstream.Fetch(ctx, p)
	if err != nil {
		o.logger.Warn().Err(err).Str("key", key).Msg("upstream fetch failed")
		return nil, err
	}

	fetchedAt := o.now()
	o.writeAsync(key, cache.NewRecord(data, fetchedAt))
	return &Result{Data: data, FetchedAt: fetchedAt}, nil
}

// writeAsync stores rec without blocking the caller. Failures are logged and
// counted, never returned.
func (o *Orchestrator) writeAsync(key string, rec cache.Record) {
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), o.writeTimeout)
		defer cancel()

		if err := o.store.Write(ctx, key, rec); err != nil {
			o.metrics.IncCacheWriteFailure()
			o.logger.Error().Err(err).Str("key", key).Msg("failed to write cache")
			return
		}
		o.logger.Debug().Str("key", key).Int("bytes", len(rec.Data)).Msg("cache refreshed")
	}()
}

// Wait blocks until background cache writes have finished.
func (o *Orchestrator) Wait() {
	o.pending.Wait()
}
