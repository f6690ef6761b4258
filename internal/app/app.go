// Package app assembles the report pipeline from a loaded config.
package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hotelstats/internal/cache"
	"hotelstats/internal/config"
	"hotelstats/internal/fetch"
	"hotelstats/internal/metrics"
	"hotelstats/internal/service"
	"hotelstats/internal/vendor"
)

// App holds the wired components. Close releases the cache backend.
type App struct {
	Cache   *cache.Handle
	Vendor  vendor.Client
	Fetcher *fetch.Orchestrator
	Reports *service.Reports
}

// New wires the pipeline described by cfg. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*App, error) {
	handle, err := cache.Open(CacheOptions(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := vendor.New(vendor.Options{
		Mode: cfg.Upstream.Mode,
		URL:  cfg.Upstream.URL,
		Credentials: vendor.Credentials{
			HotelCode: cfg.Upstream.HotelCode,
			AuthCode:  cfg.Upstream.AuthCode,
			APIKey:    cfg.Upstream.APIKey,
			EmailID:   cfg.Upstream.EmailID,
		},
		Timeout:       cfg.UpstreamTimeout(),
		RatePerSecond: cfg.Upstream.RatePerSecond,
	}, m, logger)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}

	orch := fetch.New(handle, client, cfg.CacheTimeout(), m, logger)
	reports := service.New(orch, client, service.Options{
		Layout:        cache.Layout(cfg.Cache.Layout),
		Location:      service.LoadLocation(cfg.Timezone),
		LookbackDays:  cfg.Upstream.LookbackDays,
		LookaheadDays: cfg.Upstream.LookaheadDays,
	}, logger)

	return &App{Cache: handle, Vendor: client, Fetcher: orch, Reports: reports}, nil
}

// CacheOptions maps the cache section of cfg onto cache.Options.
func CacheOptions(cfg *config.Config) cache.Options {
	return cache.Options{
		Backend:       cfg.Cache.Backend,
		Layout:        cache.Layout(cfg.Cache.Layout),
		Path:          cfg.Cache.Path,
		RedisAddr:     cfg.Redis.Address,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   cfg.Redis.Prefix,
		// Redis drops keys a while after they stop being fresh.
		RedisExpiry: cache.ExpiryFor(cfg.CacheTimeout()),
		SQLitePath:  cfg.SQLite.Path,
		PostgresDSN: cfg.Postgres.DSN,
	}
}

// SetCacheTimeout applies a reloaded cache timeout to freshness checks and to
// backend key expiry.
func (a *App) SetCacheTimeout(d time.Duration) {
	a.Fetcher.SetTimeout(d)
	a.Cache.SetTimeout(d)
}

// Close waits for pending cache writes and closes the backend.
func (a *App) Close() error {
	a.Fetcher.Wait()
	return a.Cache.Close()
}
