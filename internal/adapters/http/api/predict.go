// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/nourish/internal/domain/model"
)

// PredictDependencies defines the interface for synchronous assessments.
type PredictDependencies interface {
	Assess(ctx context.Context, in model.AssessmentInput) (model.Assessment, error)
}

// PredictHandler handles synchronous risk assessment requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	AgeGroup           string  `json:"age_group" validate:"required"`
	Gender             string  `json:"gender" validate:"required"`
	Region             string  `json:"region" validate:"required"`
	MealsPerDay        int     `json:"meals_per_day" validate:"min=0"`
	FoodDiversityScore int     `json:"food_diversity_score" validate:"min=0"`
	ProteinIntakeG     float64 `json:"protein_intake_g" validate:"min=0"`
	CalorieIntakeKcal  float64 `json:"calorie_intake_kcal" validate:"min=0"`
	AttendanceRate     float64 `json:"attendance_rate" validate:"min=0,max=1"`
	DaysSinceLastCheck int     `json:"days_since_last_check" validate:"min=0"`
}

// toInput maps the request onto the domain input, rejecting values outside
// the closed enums.
func (p predictRequest) toInput() (model.AssessmentInput, error) {
	age, err := model.ParseAgeGroup(p.AgeGroup)
	if err != nil {
		return model.AssessmentInput{}, err
	}
	gender, err := model.ParseGender(p.Gender)
	if err != nil {
		return model.AssessmentInput{}, err
	}
	return model.AssessmentInput{
		AgeGroup: age,
		Gender:   gender,
		Region:   p.Region,
		Behavior: model.Behavior{
			MealsPerDay:        p.MealsPerDay,
			FoodDiversityScore: p.FoodDiversityScore,
			ProteinIntakeG:     p.ProteinIntakeG,
			CalorieIntakeKcal:  p.CalorieIntakeKcal,
			AttendanceRate:     p.AttendanceRate,
			DaysSinceLastCheck: p.DaysSinceLastCheck,
		},
	}, nil
}

type predictResponse struct {
	RiskScore       float64  `json:"risk_score"`
	RiskCategory    string   `json:"risk_category"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	Timestamp       string   `json:"timestamp"`
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
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

	assessment, err := h.deps.Assess(r.Context(), in)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		RiskScore:       assessment.RiskScore,
		RiskCategory:    string(assessment.RiskCategory),
		Confidence:      assessment.Confidence,
		Recommendations: assessment.Recommendations,
		Timestamp:       assessment.Timestamp.Format(time.RFC3339),
	})
}
