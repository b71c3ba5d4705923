// Package repository holds the process-lifetime cache of the normalized event log.
package repository

import (
	"sync/atomic"
	"time"

	"github.com/okian/rollcall/internal/domain/ingest"
	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/pkg/metrics"
)

// CachedLog is one refresh cycle's output. It is never mutated after Store.
type CachedLog struct {
	Log         *model.EventLog
	RefreshedAt time.Time
	Report      ingest.Report
	Source      string
}

// LogStore holds the current CachedLog. Readers always see a complete
// value; replacement is a single pointer swap.
type LogStore struct {
	current atomic.Pointer[CachedLog]
}

// NewLogStore constructs an empty store.
func NewLogStore(opts ...Option) *LogStore {
	s := &LogStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current log, or nil when nothing was stored yet.
func (s *LogStore) Load() *CachedLog {
	return s.current.Load()
}

// Get returns the current log or ErrEmpty.
func (s *LogStore) Get() (*CachedLog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, ErrEmpty
	}
	return c, nil
}

// Store replaces the current log and returns the previous one.
func (s *LogStore) Store(c *CachedLog) (*CachedLog, error) {
	if c == nil || c.Log == nil {
		return nil, ErrNilLog
	}
	prev := s.current.Swap(c)
	metrics.UpdateLogShape(c.Log.Len(), len(c.Log.Names()), len(c.Log.Dates()))
	metrics.UpdateRefreshLastUnix(c.RefreshedAt)
	return prev, nil
}

// RefreshedAt returns the timestamp of the current log, zero when empty.
func (s *LogStore) RefreshedAt() time.Time {
	if c := s.current.Load(); c != nil {
		return c.RefreshedAt
	}
	return time.Time{}
}

// Age returns how old the current log is at now; false when empty.
func (s *LogStore) Age(now time.Time) (time.Duration, bool) {
	c := s.current.Load()
	if c == nil {
		return 0, false
	}
	return now.Sub(c.RefreshedAt), true
}
