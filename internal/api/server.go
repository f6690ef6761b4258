// Package api exposes the reports over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"hotelstats/internal/metrics"
	"hotelstats/internal/models"
)

// Reports is what the handlers need from service.Reports.
type Reports interface {
	DailyStats(ctx context.Context, dayParam string) (models.DailyStats, error)
	Calendar(ctx context.Context, monthParam string) (models.MonthlyCalendar, error)
	Report(ctx context.Context, dayParam, monthParam string, monthGiven bool) (any, error)
}

// Options configures the HTTP server.
type Options struct {
	// StaticDir is served at / when set.
	StaticDir   string
	CORSOrigins []string
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

// HTTPServer serves the JSON API, the spreadsheet export and health probes.
type HTTPServer struct {
	reports Reports
	opts    Options
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewHTTPServer(reports Reports, opts Options, m *metrics.Metrics, logger zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		reports: reports,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/report", s.handleReport)
		r.Get("/report/export", s.handleExport)
	})

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return r
}

// Serve runs the server on addr until ctx is cancelled.
func (s *HTTPServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", addr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
