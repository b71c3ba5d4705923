package api

import "github.com/okian/rollcall/pkg/logger"

type settings struct {
	logger logger.Logger
}

// Option configures the API server.
type Option func(*settings)

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
