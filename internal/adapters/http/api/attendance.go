package api

import (
	"errors"
	"net/http"

	service "github.com/okian/rollcall/internal/app"
	"github.com/okian/rollcall/internal/domain/window"
	"github.com/okian/rollcall/pkg/logger"
)

// AttendanceHandler serves the range summary, single-day records and timeline.
type AttendanceHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(deps Dependencies, l logger.Logger) *AttendanceHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &AttendanceHandler{deps: deps, logger: l}
}

// HandleSummary handles GET /attendance/summary?start=&end= requests.
func (h *AttendanceHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, nil)
		return
	}
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	sum, err := h.deps.Summary(r.Context(), service.SummaryRequest{Start: start, End: end})
	if err != nil {
		h.logger.Debug(r.Context(), "summary failed", logger.Error(err))
		writeServiceError(w, err, sum.Validity)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleRecords handles GET /attendance/records?date= requests.
func (h *AttendanceHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, nil)
		return
	}
	day, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("missing date"))
		return
	}

	sum, err := h.deps.Records(r.Context(), *day)
	if err != nil {
		writeServiceError(w, err, sum.Validity)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleTimeline handles GET /attendance/timeline requests.
func (h *AttendanceHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, nil)
		return
	}
	tl, err := h.deps.Timeline(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "timeline failed", logger.Error(err))
		writeServiceError(w, err, window.Result{})
		return
	}
	writeJSON(w, http.StatusOK, tl)
}
