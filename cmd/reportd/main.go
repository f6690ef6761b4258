package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hotelstats/internal/api"
	"hotelstats/internal/app"
	"hotelstats/internal/config"
	"hotelstats/internal/metrics"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to read .env")
	}

	cfgPath := config.PathFromEnv()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	a, err := app.New(cfg, m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("close cache")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only the cache lifetime is applied live; other changes need a restart.
	err = config.Watch(ctx, cfgPath, 30*time.Second, logger, func(c *config.Config) {
		a.SetCacheTimeout(c.CacheTimeout())
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewHTTPServer(a.Reports, api.Options{
		StaticDir:   cfg.Server.StaticDir,
		CORSOrigins: cfg.Server.CORSOrigins,
		Ready:       a.Cache.Ping,
	}, m, logger)

	logger.Info().
		Str("mode", cfg.Upstream.Mode).
		Str("cache_backend", cfg.Cache.Backend).
		Str("cache_layout", cfg.Cache.Layout).
		Dur("cache_timeout", cfg.CacheTimeout()).
		Msg("report service started")

	if err := srv.Serve(ctx, fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Error().Err(err).Msg("http server error")
	}
	logger.Info().Msg("shutting down")
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
