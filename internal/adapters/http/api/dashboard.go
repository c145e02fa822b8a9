// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/nourish/internal/domain/types"
)

// DashboardDependencies defines the interface for dashboard aggregates.
type DashboardDependencies interface {
	DashboardStats(ctx context.Context) (types.DashboardStats, error)
}

// dashboardHandler handles dashboard requests
type dashboardHandler struct {
	deps DashboardDependencies
}

// newdashboardHandler creates a new dashboard handler
func newdashboardHandler(deps DashboardDependencies) *dashboardHandler {
	return &dashboardHandler{deps: deps}
}

// HandleDashboard handles GET /dashboard requests
// Returns an HTML page that renders /dashboard/stats and /triage data
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	// Serve embedded dashboard page
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}

// HandleStats handles GET /dashboard/stats requests.
func (h *dashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
