package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/logging"
	"github.com/JonMunkholm/proker/internal/web/templates"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/proker", http.StatusFound)
}

// handleProker renders the viewer page for ?tab= and ?view=.
func (s *Server) handleProker(w http.ResponseWriter, r *http.Request) {
	state := s.service.ViewState(pageTab(r))
	view := templates.NormalizeView(r.URL.Query().Get("view"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(state, view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string                  `json:"status"`
	Sheets      int                     `json:"sheets"`
	Stale       int                     `json:"stale"`
	Refreshing  bool                    `json:"refreshing"`
	LastRefresh *time.Time              `json:"lastRefresh,omitempty"`
	LastError   string                  `json:"lastError,omitempty"`
	Fetches     core.FetchLimiterStatus `json:"fetches"`
}

// Health statuses.
const (
	healthLoading  = "loading"
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// handleHealth reports refresh state. It answers 200 once any data is
// loaded and 503 before that.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Result()
	resp := HealthResponse{
		Status:     healthOK,
		Refreshing: s.service.Refreshing(),
		Fetches:    s.service.FetchLimiterStatus(),
	}
	if err != nil {
		resp.LastError = core.FormatUserError(err)
	}

	status := http.StatusOK
	switch {
	case result == nil:
		resp.Status = healthLoading
		status = http.StatusServiceUnavailable
	default:
		resp.Sheets = len(result.Sheets)
		resp.Stale = result.StaleCount()
		resp.LastRefresh = &result.CompletedAt
		if err != nil || resp.Stale > 0 {
			resp.Status = healthDegraded
		}
	}

	writeJSON(w, status, resp)
}
