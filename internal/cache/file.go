package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Layout selects how FileStore arranges records in its file.
type Layout string

const (
	// LayoutSingle keeps exactly one record; keys are ignored.
	LayoutSingle Layout = "single"
	// LayoutByDay keeps one record per day key under "byDay".
	LayoutByDay Layout = "by_day"
)

// dayFile is the on-disk shape of LayoutByDay.
type dayFile struct {
	ByDay map[string]Record `json:"byDay"`
}

// FileStore keeps cache records in a single JSON file.
type FileStore struct {
	path   string
	layout Layout
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string, layout Layout, logger zerolog.Logger) *FileStore {
	if layout != LayoutByDay {
		layout = LayoutSingle
	}
	return &FileStore{
		path:   path,
		layout: layout,
		logger: logger.With().Str("component", "cache.file").Logger(),
	}
}

// Read returns the record for key.
func (s *FileStore) Read(_ context.Context, key string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug().Err(err).Msg("cache file unreadable")
		}
		return nil, false
	}

	if s.layout == LayoutSingle {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil || !rec.valid() {
			s.logger.Debug().Err(err).Msg("cache file corrupt, treating as miss")
			return nil, false
		}
		return &rec, true
	}

	var file dayFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Debug().Err(err).Msg("cache file corrupt, treating as miss")
		return nil, false
	}
	rec, ok := file.ByDay[key]
	if !ok || !rec.valid() {
		return nil, false
	}
	return &rec, true
}

// Write stores rec under key. For LayoutByDay the other days in the file are
// kept; a corrupt file is replaced.
func (s *FileStore) Write(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload any = rec
	if s.layout == LayoutByDay {
		file := dayFile{ByDay: make(map[string]Record)}
		if data, err := os.ReadFile(s.path); err == nil {
			if err := json.Unmarshal(data, &file); err != nil || file.ByDay == nil {
				file.ByDay = make(map[string]Record)
			}
		}
		file.ByDay[key] = rec
		payload = file
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}
	return writeAtomic(s.path, data)
}

// writeAtomic writes to a uniquely named temp file in the same directory and
// renames it over path, so concurrent writers never share a temp file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
