package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/pkg/logger"
)

const maxErrorBody = 512

// HTTPSource downloads a CSV export, e.g. a published spreadsheet tab.
type HTTPSource struct {
	url     string
	columns Columns
	client  *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// NewHTTPSource constructs an HTTPSource for url.
func NewHTTPSource(url string, opts ...Option) *HTTPSource {
	s := newSettings(opts)
	client := s.client
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{url: url, columns: s.columns, client: client, timeout: s.timeout, logger: s.logger}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return KindHTTP }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Warn(ctx, "csv download failed",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(body)))
		return nil, unavailable(s.Name(), fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	rows, err := ReadCSV(resp.Body, s.columns)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	s.logger.Debug(ctx, "csv downloaded", logger.Int("rows", len(rows)))
	return rows, nil
}
