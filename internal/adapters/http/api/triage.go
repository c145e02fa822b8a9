// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

// TriageDependencies defines the interface for triage operations.
type TriageDependencies interface {
	TopRisk(ctx context.Context, n int) ([]Entry, error)
}

// TriageHandler handles highest-risk-first listing requests.
type TriageHandler struct {
	deps     TriageDependencies
	maxLimit int
}

// NewTriageHandler creates a new triage handler.
func NewTriageHandler(deps TriageDependencies, maxLimit int) *TriageHandler {
	return &TriageHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTriage handles GET /triage?limit=N requests.
func (h *TriageHandler) HandleGetTriage(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_triage"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopRisk(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
