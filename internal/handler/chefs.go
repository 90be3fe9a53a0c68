package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/middleware"
)

// ChefStore defines the database methods needed by chef handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ChefStore interface {
	CreateChef(ctx context.Context, arg database.CreateChefParams) (database.Chef, error)
	GetChef(ctx context.Context, id uuid.UUID) (database.Chef, error)
	ListChefs(ctx context.Context, arg database.ListChefsParams) ([]database.Chef, error)
	ListDishesByChef(ctx context.Context, chefID uuid.UUID) ([]database.Dish, error)
}

// ChefHandler handles chef browse and profile endpoints.
type ChefHandler struct {
	store ChefStore
}

// NewChefHandler creates a new ChefHandler.
func NewChefHandler(store ChefStore) *ChefHandler {
	return &ChefHandler{store: store}
}

// RegisterPublicRoutes registers the unauthenticated browse endpoints.
func (h *ChefHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/chefs", h.List)
	r.Get("/chefs/{id}", h.Get)
	r.Get("/chefs/{id}/dishes", h.ListDishes)
}

// RegisterRoutes registers the authenticated chef endpoints.
func (h *ChefHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chefs", h.Create)
}

// --- Request / Response types ---

type createChefRequest struct {
	KitchenName string `json:"kitchen_name"`
	Bio         string `json:"bio"`
	Cuisine     string `json:"cuisine"`
}

type chefResponse struct {
	ID             uuid.UUID `json:"id"`
	KitchenName    string    `json:"kitchen_name"`
	Bio            *string   `json:"bio"`
	Cuisine        *string   `json:"cuisine"`
	Rating         string    `json:"rating"`
	ReviewsCount   int32     `json:"reviews_count"`
	MealsDelivered int32     `json:"meals_delivered"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type chefListResponse struct {
	Chefs  []chefResponse `json:"chefs"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type dishResponse struct {
	ID          uuid.UUID `json:"id"`
	ChefID      uuid.UUID `json:"chef_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Calories    int32     `json:"calories"`
	Protein     int32     `json:"protein"`
	Carbs       int32     `json:"carbs"`
	Fats        int32     `json:"fats"`
	MealType    string    `json:"meal_type"`
	IsAvailable bool      `json:"is_available"`
}

// --- Handlers ---

// Create handles POST /chefs. A CHEF-role user creates their kitchen profile.
func (h *ChefHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createChefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.KitchenName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kitchen_name is required"})
		return
	}

	chef, err := h.store.CreateChef(r.Context(), database.CreateChefParams{
		UserID:      claims.UserID,
		KitchenName: req.KitchenName,
		Bio:         textOrNull(req.Bio),
		Cuisine:     textOrNull(req.Cuisine),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "chef profile already exists"})
			return
		}
		log.Printf("ERROR: create chef: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbChefToResponse(chef))
}

// List handles GET /chefs (public browse).
func (h *ChefHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	chefs, err := h.store.ListChefs(r.Context(), database.ListChefsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		log.Printf("ERROR: list chefs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]chefResponse, len(chefs))
	for i, c := range chefs {
		resp[i] = dbChefToResponse(c)
	}

	writeJSON(w, http.StatusOK, chefListResponse{
		Chefs:  resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /chefs/{id} (public).
func (h *ChefHandler) Get(w http.ResponseWriter, r *http.Request) {
	chefID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chef ID"})
		return
	}

	chef, err := h.store.GetChef(r.Context(), chefID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chef not found"})
			return
		}
		log.Printf("ERROR: get chef: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbChefToResponse(chef))
}

// ListDishes handles GET /chefs/{id}/dishes (public; available dishes only).
func (h *ChefHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	chefID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chef ID"})
		return
	}

	dishes, err := h.store.ListDishesByChef(r.Context(), chefID)
	if err != nil {
		log.Printf("ERROR: list dishes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = dbDishToResponse(d)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"dishes": resp})
}

// --- Helpers ---

func dbChefToResponse(c database.Chef) chefResponse {
	return chefResponse{
		ID:             c.ID,
		KitchenName:    c.KitchenName,
		Bio:            textPtr(c.Bio),
		Cuisine:        textPtr(c.Cuisine),
		Rating:         numericToString(c.Rating),
		ReviewsCount:   c.ReviewsCount,
		MealsDelivered: c.MealsDelivered,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

func dbDishToResponse(d database.Dish) dishResponse {
	return dishResponse{
		ID:          d.ID,
		ChefID:      d.ChefID,
		Name:        d.Name,
		Description: textPtr(d.Description),
		Price:       numericToString(d.Price),
		Calories:    d.Calories,
		Protein:     d.Protein,
		Carbs:       d.Carbs,
		Fats:        d.Fats,
		MealType:    d.MealType,
		IsAvailable: d.IsAvailable,
	}
}
