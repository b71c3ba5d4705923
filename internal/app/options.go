package service

import (
	"time"

	"github.com/okian/rollcall/internal/adapters/repository"
	"github.com/okian/rollcall/internal/adapters/source"
	"github.com/okian/rollcall/internal/domain/ingest"
	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/domain/refresh"
	"github.com/okian/rollcall/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets the raw row feed.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithNormalizer replaces the default-configured normalizer.
func WithNormalizer(n *ingest.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithStore sets the log cache.
func WithStore(store *repository.LogStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock sets the clock the refresh policy reads.
func WithClock(c refresh.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRefreshInterval sets how long a loaded log stays fresh. Non-positive
// values refresh on every request.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		s.interval = d
	}
}

// WithTopK sets k for the attendance and promptness aggregators.
func WithTopK(attendance, promptness int) Option {
	return func(s *Service) {
		if attendance > 0 {
			s.attendanceK = attendance
		}
		if promptness > 0 {
			s.promptnessK = promptness
		}
	}
}

// WithDefaultStart sets the start date used when a request omits one.
func WithDefaultStart(d model.Date) Option {
	return func(s *Service) {
		s.defaultStart = d
	}
}
