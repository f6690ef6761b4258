// Package cache stores raw vendor responses keyed by a cache key.
//
// A Record carries the time it was written; whether it may still be served is
// decided by IsFresh against the configured timeout. Stores never report read
// failures: a missing, unreadable or corrupt entry is simply a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one cached upstream response.
type Record struct {
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
	Data      json.RawMessage `json:"data"`
}

// NewRecord stamps data with now.
func NewRecord(data json.RawMessage, now time.Time) Record {
	return Record{Timestamp: now.UnixMilli(), Data: data}
}

// Age returns how long ago the record was written.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.Timestamp))
}

// IsFresh reports whether rec may be served at now. A zero or negative
// timeout disables caching, so every record is stale.
func IsFresh(rec *Record, timeout time.Duration, now time.Time) bool {
	if rec == nil || timeout <= 0 {
		return false
	}
	return rec.Age(now) < timeout
}

// Store is implemented by the cache backends.
type Store interface {
	// Read returns the record for key, or false on a miss.
	Read(ctx context.Context, key string) (*Record, bool)

	// Write replaces the record for key.
	Write(ctx context.Context, key string, rec Record) error
}

// valid reports whether a decoded record is usable.
func (r *Record) valid() bool {
	return r != nil && r.Timestamp > 0 && len(r.Data) > 0 && json.Valid(r.Data)
}
