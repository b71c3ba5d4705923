package source

import (
	"net/http"
	"time"

	"github.com/okian/rollcall/pkg/logger"
)

const defaultTimeout = 10 * time.Second

type settings struct {
	columns Columns
	logger  logger.Logger
	client  *http.Client
	timeout time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		columns: DefaultColumns(),
		logger:  logger.Nop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a source.
type Option func(*settings)

// WithColumns overrides the column names. Empty fields keep their defaults,
// except Rank and Label which may be disabled with "-".
func WithColumns(c Columns) Option {
	return func(s *settings) {
		if c.Date != "" {
			s.columns.Date = c.Date
		}
		if c.Name != "" {
			s.columns.Name = c.Name
		}
		switch c.Rank {
		case "":
		case "-":
			s.columns.Rank = ""
		default:
			s.columns.Rank = c.Rank
		}
		switch c.Label {
		case "":
		case "-":
			s.columns.Label = ""
		default:
			s.columns.Label = c.Label
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient sets the client used by the HTTP source.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}
