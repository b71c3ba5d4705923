package api

import (
	"net/http"
	"time"

	"github.com/okian/rollcall/internal/domain/ingest"
	"github.com/okian/rollcall/internal/domain/window"
	"github.com/okian/rollcall/pkg/logger"
)

// RefreshHandler forces a source reload.
type RefreshHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies, l logger.Logger) *RefreshHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &RefreshHandler{deps: deps, logger: l}
}

type refreshResponse struct {
	Status      string        `json:"status"`
	Source      string        `json:"source"`
	Records     int           `json:"records"`
	Report      ingest.Report `json:"report"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

// HandleRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, nil)
		return
	}
	cached, err := h.deps.Refresh(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "forced refresh failed", logger.Error(err))
		writeServiceError(w, err, window.Result{})
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:      "refreshed",
		Source:      cached.Source,
		Records:     cached.Log.Len(),
		Report:      cached.Report,
		RefreshedAt: cached.RefreshedAt,
	})
}
