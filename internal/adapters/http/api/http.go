// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/rollcall/internal/adapters/repository"
	"github.com/okian/rollcall/internal/adapters/source"
	service "github.com/okian/rollcall/internal/app"
	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/domain/window"
	"github.com/okian/rollcall/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Summary(ctx context.Context, req service.SummaryRequest) (service.Summary, error)
	Records(ctx context.Context, day model.Date) (service.Summary, error)
	Timeline(ctx context.Context) (model.Timeline, error)

	// Refresh forces a reload from the source.
	Refresh(ctx context.Context) (*repository.CachedLog, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	attendanceHandler *AttendanceHandler
	refreshHandler    *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := settings{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		attendanceHandler: NewAttendanceHandler(deps, cfg.logger),
		refreshHandler:    NewRefreshHandler(deps, cfg.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("/attendance/summary", MetricsMiddleware(s.attendanceHandler.HandleSummary, "summary"))
	mux.HandleFunc("/attendance/timeline", MetricsMiddleware(s.attendanceHandler.HandleTimeline, "timeline"))
	mux.HandleFunc("/attendance/records", MetricsMiddleware(s.attendanceHandler.HandleRecords, "records"))
}

// Error codes returned in errorResponse.Code besides the blocking range statuses.
const (
	codeBadRequest        = "bad_request"
	codeMethodNotAllowed  = "method_not_allowed"
	codeSourceUnavailable = "source_unavailable"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Validity *window.Result `json:"validity,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service failures onto status codes. A blocking range
// carries its status as the code so clients can branch on it.
func writeServiceError(w http.ResponseWriter, err error, validity window.Result) {
	switch {
	case errors.Is(err, window.ErrInvalidRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:     string(validity.Status),
			Message:  validity.Message(),
			Validity: &validity,
		})
	case errors.Is(err, source.ErrSourceUnavailable), errors.Is(err, service.ErrNoSource):
		writeError(w, http.StatusServiceUnavailable, codeSourceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err)
	}
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, key string) (*model.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil //nolint:nilnil // absent parameter is not an error
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadRequest, key, err)
	}
	return &d, nil
}
