// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/nourish/internal/adapters/artifacts"
	"github.com/okian/nourish/internal/domain/dedupe"
	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/mealtext"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an ingest event for async processing.
	// Returns false on backpressure.
	Enqueue(ctx context.Context, e model.IngestEvent) bool

	// Assess synchronously scores one subject with the loaded models.
	Assess(ctx context.Context, in model.AssessmentInput) (model.Assessment, error)

	// ExtractMeals parses a free-text meal description.
	ExtractMeals(ctx context.Context, text string) (mealtext.Extraction, error)

	// Read operations expose registry data.
	List(ctx context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error)
	Get(ctx context.Context, id string) (model.BeneficiaryRecord, error)
	TopRisk(ctx context.Context, n int) ([]Entry, error)
	DashboardStats(ctx context.Context) (types.DashboardStats, error)
}

// Entry mirrors the read shape returned by triage queries.
type Entry = types.Entry

// validate checks request struct tags. A single instance caches the parsed
// tag metadata across requests.
var validate = validator.New()

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	predictHandler       *PredictHandler
	chatHandler          *ChatHandler
	beneficiariesHandler *BeneficiariesHandler
	triageHandler        *TriageHandler
	dashboardHandler     *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		predictHandler:       NewPredictHandler(deps),
		chatHandler:          NewChatHandler(deps),
		beneficiariesHandler: NewBeneficiariesHandler(deps, maxListLimit),
		triageHandler:        NewTriageHandler(deps, maxListLimit),
		dashboardHandler:     newdashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard/stats", MetricsMiddleware(s.dashboardHandler.HandleStats, "dashboard_stats"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/chat", MetricsMiddleware(s.chatHandler.HandleChat, "chat"))
	mux.HandleFunc("/beneficiaries", MetricsMiddleware(s.beneficiariesHandler.HandleBeneficiaries, "beneficiaries"))
	mux.HandleFunc("/beneficiaries/", MetricsMiddleware(s.beneficiariesHandler.HandleGetByID, "beneficiary"))
	mux.HandleFunc("/triage", MetricsMiddleware(s.triageHandler.HandleGetTriage, "triage"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// writeDomainError translates domain error kinds into transport codes.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, encoding.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, "unknown_category", Wrap(op, err))
	case errors.Is(err, model.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, artifacts.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// validateRequest runs struct tag validation and flattens the first failure
// into a readable message.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s failed on %q", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}
