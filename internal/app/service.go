// Package service provides the attendance pipeline that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/rollcall/internal/adapters/repository"
	"github.com/okian/rollcall/internal/adapters/source"
	"github.com/okian/rollcall/internal/domain/aggregate"
	"github.com/okian/rollcall/internal/domain/ingest"
	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/domain/refresh"
	"github.com/okian/rollcall/internal/domain/window"
	"github.com/okian/rollcall/pkg/logger"
	"github.com/okian/rollcall/pkg/metrics"
)

const refreshKey = "refresh"

// Refresh outcomes reported to metrics.
const (
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
	outcomeStaleServed = "stale_served"
)

// Service runs refresh -> validate -> filter -> aggregate for each request.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     source.Source
	normalizer *ingest.Normalizer
	store      *repository.LogStore
	group      singleflight.Group

	// Configuration
	interval     time.Duration
	clock        refresh.Clock
	attendanceK  int
	promptnessK  int
	defaultStart model.Date

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		interval:    refresh.DefaultInterval,
		clock:       refresh.SystemClock{},
		attendanceK: aggregate.DefaultAttendanceK,
		promptnessK: aggregate.DefaultPromptnessK,
		logger:      logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.normalizer == nil {
		s.normalizer = ingest.New(ingest.WithLogger(s.logger))
	}
	if s.store == nil {
		s.store = repository.NewLogStore()
	}
	return s
}

func (s *Service) policy() refresh.Policy {
	return refresh.NewPolicy(s.interval, s.clock)
}

// Start warms the cache. A failing source is logged, not fatal: requests
// answer with a source error until a refresh succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.source == nil {
		s.mu.Unlock()
		return ErrNoSource
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting attendance service",
		logger.String("source", s.source.Name()),
		logger.Duration("refresh_interval", s.interval),
	)
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial load failed", logger.Error(err))
	}
	return nil
}

// Stop marks the service stopped. The cached log stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "attendance service stopped")
}

// Current returns the cached log, refreshing it first when the policy says
// it is stale. A failed refresh keeps serving the previous log when there is one.
func (s *Service) Current(ctx context.Context) (*repository.CachedLog, error) {
	cached := s.store.Load()
	if cached != nil && !s.policy().Due(cached.RefreshedAt) {
		return cached, nil
	}

	fresh, err := s.refresh(ctx)
	if err == nil {
		return fresh, nil
	}
	if cached != nil {
		metrics.RecordRefresh(outcomeStaleServed, 0)
		s.logger.Warn(ctx, "refresh failed, serving cached log",
			logger.Error(err),
			logger.Time("refreshed_at", cached.RefreshedAt),
		)
		return cached, nil
	}
	return nil, err
}

// Refresh rebuilds the log from the source regardless of its age. On failure
// the previous log is kept and the error is returned.
func (s *Service) Refresh(ctx context.Context) (*repository.CachedLog, error) {
	return s.refresh(ctx)
}

// refresh collapses concurrent callers into a single fetch.
func (s *Service) refresh(ctx context.Context) (*repository.CachedLog, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	// The shared fetch must not die with whichever caller arrived first.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(refreshKey, func() (interface{}, error) {
		return s.load(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.(*repository.CachedLog), nil
}

func (s *Service) load(ctx context.Context) (*repository.CachedLog, error) {
	start := time.Now()
	rows, err := s.source.Fetch(ctx)
	metrics.RecordSourceFetchLatency(s.source.Name(), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRefresh(outcomeFailure, float64(time.Since(start).Milliseconds()))
		metrics.RecordErrorByComponent("source", "unavailable")
		s.logger.Error(ctx, "source fetch failed", logger.String("source", s.source.Name()), logger.Error(err))
		return nil, err
	}

	log, rep := s.normalizer.Normalize(ctx, rows)
	metrics.RecordIngest(rep.Input, rep.MissingDate, rep.InvalidDate, rep.MissingName, rep.Duplicates)

	cached := &repository.CachedLog{
		Log:         log,
		RefreshedAt: s.clock.Now(),
		Report:      rep,
		Source:      s.source.Name(),
	}
	if _, err := s.store.Store(cached); err != nil {
		return nil, fmt.Errorf("store log: %w", err)
	}

	took := time.Since(start)
	metrics.RecordRefresh(outcomeSuccess, float64(took.Milliseconds()))
	s.logger.Info(ctx, "attendance log refreshed",
		logger.Int("rows", rep.Input),
		logger.Int("records", log.Len()),
		logger.Int("discarded", rep.Discarded()),
		logger.Duration("took", took),
	)
	return cached, nil
}

// Summary resolves the requested range, validates it and runs the range
// aggregators, or returns the day's records for a single-day range. Blocking
// range problems return the Summary carrying the validity plus an error
// wrapping window.ErrInvalidRange.
func (s *Service) Summary(ctx context.Context, req SummaryRequest) (Summary, error) {
	cached, err := s.Current(ctx)
	if err != nil {
		return Summary{}, err
	}
	log := cached.Log
	start, end := s.resolveRange(log, req)

	res := window.Validate(log, start, end)
	metrics.RecordRangeValidation(string(res.Status))

	out := Summary{
		Start:       start,
		End:         end,
		Validity:    res,
		Message:     res.Message(),
		RefreshedAt: cached.RefreshedAt,
	}
	out.Latest, _ = log.MaxDate()
	if res.Blocking() {
		s.logger.Debug(ctx, "range rejected", logger.String("status", string(res.Status)))
		return out, res.Err()
	}

	filtered := window.Filter(log, start, end)
	if res.SingleDay && res.Status != window.StatusEmptyLog {
		out.SingleDay = true
		out.Records = filtered.Records()
		return out, nil
	}

	timed("top_attendance", func() { out.TopAttendance = aggregate.TopAttendance(filtered, s.attendanceK) })
	timed("top_promptness", func() { out.TopPromptness = aggregate.TopPromptness(filtered, s.promptnessK) })
	timed("daily_unique", func() { out.Daily = aggregate.DailyUniqueCounts(filtered) })
	return out, nil
}

// Records returns the single-day record list for day.
func (s *Service) Records(ctx context.Context, day model.Date) (Summary, error) {
	return s.Summary(ctx, SummaryRequest{Start: &day, End: &day})
}

// Timeline builds the per-user attendance timeline over the full log.
func (s *Service) Timeline(ctx context.Context) (model.Timeline, error) {
	cached, err := s.Current(ctx)
	if err != nil {
		return model.Timeline{}, err
	}
	var tl model.Timeline
	timed("timeline", func() { tl = aggregate.Timeline(cached.Log) })
	return tl, nil
}

// resolveRange fills missing bounds: start from the configured default (never
// earlier than the log's first date) or the earliest date, end from the latest date.
// On an empty log a single supplied bound stands in for the other.
func (s *Service) resolveRange(log *model.EventLog, req SummaryRequest) (model.Date, model.Date) {
	earliest, ok := log.MinDate()
	latest, _ := log.MaxDate()

	start := earliest
	switch {
	case req.Start != nil:
		start = *req.Start
	case ok && s.defaultStart.After(earliest):
		start = s.defaultStart
	}
	end := latest
	if req.End != nil {
		end = *req.End
	}
	if !ok {
		// An empty log has no bounds to fall back to; mirror the supplied one
		// so validation reports empty-log rather than an inverted range.
		switch {
		case req.Start != nil && req.End == nil:
			end = start
		case req.End != nil && req.Start == nil:
			start = end
		}
	}
	return start, end
}

func timed(name string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordAggregationLatency(name, float64(time.Since(start).Microseconds())/1000)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":                  started,
		"refresh_interval_seconds": int64(s.interval / time.Second),
		"top_attendance_k":         s.attendanceK,
		"top_promptness_k":         s.promptnessK,
	}
	if s.source != nil {
		stats["source"] = s.source.Name()
	}

	cached := s.store.Load()
	if cached == nil {
		stats["loaded"] = false
		return stats
	}
	now := s.clock.Now()
	stats["loaded"] = true
	stats["records"] = cached.Log.Len()
	stats["users"] = len(cached.Log.Names())
	stats["days"] = len(cached.Log.Dates())
	stats["refreshed_at"] = cached.RefreshedAt
	stats["cache_age_seconds"] = now.Sub(cached.RefreshedAt).Seconds()
	stats["next_refresh_at"] = s.policy().NextAt(cached.RefreshedAt)
	stats["last_report"] = cached.Report
	if latest, ok := cached.Log.MaxDate(); ok {
		stats["latest"] = latest
	}
	return stats
}
