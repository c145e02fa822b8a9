// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/nourish/internal/domain/mealtext"
)

// ChatDependencies defines the interface for meal-text extraction.
type ChatDependencies interface {
	ExtractMeals(ctx context.Context, text string) (mealtext.Extraction, error)
}

// ChatHandler handles meal logging requests.
type ChatHandler struct {
	deps ChatDependencies
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(deps ChatDependencies) *ChatHandler {
	return &ChatHandler{deps: deps}
}

// chatRequest mirrors the OpenAPI schema for POST /chat.
type chatRequest struct {
	UserMessage string `json:"user_message" validate:"required"`
	// Language is accepted for forward compatibility; extraction is
	// keyword-based and ignores it.
	Language string `json:"language"`
}

type chatResponse struct {
	DetectedMeals  []string `json:"detected_meals"`
	FoodGroups     []string `json:"food_groups"`
	DiversityScore int      `json:"diversity_score"`
	Message        string   `json:"message"`
	Suggestion     string   `json:"suggestion"`
}

// HandleChat handles POST /chat requests.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	extraction, err := h.deps.ExtractMeals(r.Context(), req.UserMessage)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		DetectedMeals:  extraction.Items,
		FoodGroups:     extraction.Groups,
		DiversityScore: extraction.DiversityScore,
		Message:        extraction.Message(),
		Suggestion:     extraction.Suggestion(),
	})
}
