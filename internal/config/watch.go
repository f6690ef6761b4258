package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Watch loads path, hands the result to onUpdate and then polls the file's
// mtime every interval, reloading on change. A reload that fails is logged
// and the previous config stays in effect.
func Watch(ctx context.Context, path string, interval time.Duration, logger zerolog.Logger, onUpdate func(*Config)) error {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	onUpdate(cfg)

	w := &watcher{path: path, lastMod: info.ModTime(), onUpdate: onUpdate,
		logger: logger.With().Str("component", "config").Str("path", path).Logger()}
	go w.run(ctx, interval)
	return nil
}

type watcher struct {
	path     string
	lastMod  time.Time
	onUpdate func(*Config)
	logger   zerolog.Logger
}

func (w *watcher) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil || !info.ModTime().After(w.lastMod) {
		return
	}
	// Remember the mtime even on failure so a broken file is reported once.
	w.lastMod = info.ModTime()

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error().Err(err).Msg("config reload failed, keeping previous")
		return
	}
	w.logger.Info().Dur("cache_timeout", cfg.CacheTimeout()).Msg("config reloaded")
	w.onUpdate(cfg)
}
