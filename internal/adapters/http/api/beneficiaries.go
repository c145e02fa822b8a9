// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/nourish/internal/adapters/repository"
	"github.com/okian/nourish/internal/domain/dedupe"
	"github.com/okian/nourish/internal/domain/model"
)

// Default listing configuration.
const defaultListLimit = 100

// BeneficiaryDependencies defines the interface for beneficiary operations.
type BeneficiaryDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.IngestEvent) bool
	List(ctx context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error)
	Get(ctx context.Context, id string) (model.BeneficiaryRecord, error)
}

// BeneficiariesHandler handles beneficiary ingest and listing requests.
type BeneficiariesHandler struct {
	deps     BeneficiaryDependencies
	maxLimit int
}

// NewBeneficiariesHandler creates a new beneficiaries handler.
func NewBeneficiariesHandler(deps BeneficiaryDependencies, maxLimit int) *BeneficiariesHandler {
	return &BeneficiariesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// beneficiaryRequest mirrors the OpenAPI schema for POST /beneficiaries.
// EventID is optional; the server mints one when absent.
type beneficiaryRequest struct {
	EventID       string `json:"event_id"`
	BeneficiaryID string `json:"beneficiary_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	predictRequest
}

type beneficiaryResponse struct {
	BeneficiaryID      string  `json:"beneficiary_id"`
	Name               string  `json:"name"`
	AgeGroup           string  `json:"age_group"`
	Gender             string  `json:"gender"`
	Region             string  `json:"region"`
	MealsPerDay        int     `json:"meals_per_day"`
	FoodDiversityScore int     `json:"food_diversity_score"`
	ProteinIntakeG     float64 `json:"protein_intake_g"`
	CalorieIntakeKcal  float64 `json:"calorie_intake_kcal"`
	AttendanceRate     float64 `json:"attendance_rate"`
	DaysSinceLastCheck int     `json:"days_since_last_check"`
	RiskScore          float64 `json:"risk_score"`
	RiskCategory       string  `json:"risk_category"`
	LastUpdated        string  `json:"last_updated"`
}

func toBeneficiaryResponse(rec model.BeneficiaryRecord) beneficiaryResponse {
	return beneficiaryResponse{
		BeneficiaryID:      rec.ID,
		Name:               rec.Name,
		AgeGroup:           string(rec.AgeGroup),
		Gender:             string(rec.Gender),
		Region:             rec.Region,
		MealsPerDay:        rec.MealsPerDay,
		FoodDiversityScore: rec.FoodDiversityScore,
		ProteinIntakeG:     rec.ProteinIntakeG,
		CalorieIntakeKcal:  rec.CalorieIntakeKcal,
		AttendanceRate:     rec.AttendanceRate,
		DaysSinceLastCheck: rec.DaysSinceLastCheck,
		RiskScore:          rec.RiskScore,
		RiskCategory:       string(rec.RiskCategory),
		LastUpdated:        rec.LastUpdated.Format(time.RFC3339),
	}
}

// HandleBeneficiaries dispatches /beneficiaries by method.
func (h *BeneficiariesHandler) HandleBeneficiaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handlePost accepts a record for async assessment.
func (h *BeneficiariesHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_beneficiary"
	var req beneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), eventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	event := model.IngestEvent{
		EventID: eventID,
		Record: model.BeneficiaryRecord{
			ID:       req.BeneficiaryID,
			Name:     req.Name,
			AgeGroup: in.AgeGroup,
			Gender:   in.Gender,
			Region:   in.Region,
			Behavior: in.Behavior,
		},
		TS: time.Now().UTC(),
	}
	if ok := h.deps.Enqueue(r.Context(), event); !ok {
		// Roll back the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), eventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// handleList handles GET /beneficiaries?risk_category=X&limit=N requests.
func (h *BeneficiariesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_beneficiaries"

	var category model.RiskCategory
	if raw := r.URL.Query().Get("risk_category"); raw != "" {
		parsed, err := model.ParseRiskCategory(raw)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		category = parsed
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	records, err := h.deps.List(r.Context(), category, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	out := make([]beneficiaryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toBeneficiaryResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetByID handles GET /beneficiaries/{id} requests.
func (h *BeneficiariesHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_beneficiary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/beneficiaries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toBeneficiaryResponse(rec))
}
