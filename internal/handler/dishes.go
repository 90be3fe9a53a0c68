package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/enum"
	"github.com/mealwell/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// DishStore defines the database methods needed by dish handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DishStore interface {
	GetChefByUserID(ctx context.Context, userID uuid.UUID) (database.Chef, error)
	CreateDish(ctx context.Context, arg database.CreateDishParams) (database.Dish, error)
	GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error)
	SetDishAvailability(ctx context.Context, arg database.SetDishAvailabilityParams) (database.Dish, error)
}

// DishHandler handles dish management endpoints for chefs.
type DishHandler struct {
	store DishStore
}

// NewDishHandler creates a new DishHandler.
func NewDishHandler(store DishStore) *DishHandler {
	return &DishHandler{store: store}
}

// RegisterRoutes registers dish endpoints on the given Chi router.
// Expected to be mounted inside a chef-gated subrouter: /dishes
func (h *DishHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Patch("/{id}/availability", h.SetAvailability)
}

// --- Request types ---

type createDishRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Calories    int32  `json:"calories"`
	Protein     int32  `json:"protein"`
	Carbs       int32  `json:"carbs"`
	Fats        int32  `json:"fats"`
	MealType    string `json:"meal_type"`
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

// --- Handlers ---

// Create handles POST /dishes.
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !isValidMealType(req.MealType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal_type"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be positive"})
		return
	}

	chef, err := h.store.GetChefByUserID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "no chef profile for user"})
			return
		}
		log.Printf("ERROR: get chef for create dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var priceNum pgtype.Numeric
	if err := priceNum.Scan(price.String()); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	dish, err := h.store.CreateDish(r.Context(), database.CreateDishParams{
		ChefID:      chef.ID,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       priceNum,
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fats:        req.Fats,
		MealType:    req.MealType,
	})
	if err != nil {
		log.Printf("ERROR: create dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbDishToResponse(dish))
}

// SetAvailability handles PATCH /dishes/{id}/availability.
func (h *DishHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	dishID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}

	chef, err := h.store.GetChefByUserID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "no chef profile for user"})
			return
		}
		log.Printf("ERROR: get chef for set availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// The WHERE clause pins chef ownership, so another chef's dish surfaces
	// as no rows rather than a silent update.
	dish, err := h.store.SetDishAvailability(r.Context(), database.SetDishAvailabilityParams{
		ID:          dishID,
		ChefID:      chef.ID,
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := h.store.GetDish(r.Context(), dishID); getErr != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
				return
			}
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "dish belongs to another chef"})
			return
		}
		log.Printf("ERROR: set dish availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbDishToResponse(dish))
}

// isValidMealType checks the dish/meal slot label.
func isValidMealType(s string) bool {
	switch s {
	case enum.MealTypeBreakfast, enum.MealTypeLunch, enum.MealTypeDinner, enum.MealTypeSnack:
		return true
	}
	return false
}
