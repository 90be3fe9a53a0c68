package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mealwell/api/internal/enum"
	"github.com/mealwell/api/internal/middleware"
	"github.com/mealwell/api/internal/nutrition"
)

// PlanGenerator defines the planner methods needed by plan handlers.
// Satisfied by *planner.Planner.
type PlanGenerator interface {
	Plan(ctx context.Context, profile nutrition.Profile) nutrition.Plan
}

// PlanHandler handles meal plan endpoints.
type PlanHandler struct {
	planner PlanGenerator
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planner PlanGenerator) *PlanHandler {
	return &PlanHandler{planner: planner}
}

// RegisterRoutes registers plan endpoints on the given Chi router.
func (h *PlanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/plans/generate", h.Generate)
}

// Generate handles POST /plans/generate.
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var profile nutrition.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := validateProfile(profile); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	plan := h.planner.Plan(r.Context(), profile)

	writeJSON(w, http.StatusOK, plan)
}

// validateProfile returns an error message for the first invalid field,
// or "" when the profile is usable.
func validateProfile(p nutrition.Profile) string {
	if p.Age <= 0 || p.Age > 120 {
		return "age must be between 1 and 120"
	}
	if p.Gender != "male" && p.Gender != "female" {
		return "gender must be male or female"
	}
	if p.HeightCm <= 0 {
		return "height must be > 0"
	}
	if p.WeightKg <= 0 {
		return "weight must be > 0"
	}
	if !isValidActivityLevel(p.ActivityLevel) {
		return "invalid activity_level"
	}
	if !isValidGoal(p.Goal) {
		return "invalid goal"
	}
	return ""
}

func isValidActivityLevel(s string) bool {
	switch s {
	case enum.ActivitySedentary, enum.ActivityLight, enum.ActivityModerate,
		enum.ActivityActive, enum.ActivityVeryActive:
		return true
	}
	return false
}

func isValidGoal(s string) bool {
	switch s {
	case enum.GoalLoseWeight, enum.GoalMaintain, enum.GoalGainMuscle:
		return true
	}
	return false
}
