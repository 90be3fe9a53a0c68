package router

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealwell/api/internal/config"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/enum"
	"github.com/mealwell/api/internal/events"
	"github.com/mealwell/api/internal/handler"
	mw "github.com/mealwell/api/internal/middleware"
	"github.com/mealwell/api/internal/planner"
	"github.com/mealwell/api/internal/service"
	"github.com/mealwell/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, dispatcher *events.Dispatcher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",       // web dev server
			"https://app.mealwell.in",     // production app
			"https://stg-app.mealwell.in", // staging app
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Chef browse routes (public)
	chefHandler := handler.NewChefHandler(queries)
	chefHandler.RegisterPublicRoutes(r)

	// WebSocket route (handles auth internally via query param)
	resolveChef := func(req *http.Request, userID uuid.UUID) (uuid.UUID, error) {
		chef, err := queries.GetChefByUserID(req.Context(), userID)
		if err != nil {
			return uuid.Nil, err
		}
		return chef.ID, nil
	}
	r.Get("/ws/chefs/{cid}/orders", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, resolveChef, w, req)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Chef profile creation (CHEF role)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleChef, enum.UserRoleAdmin))
			chefHandler.RegisterRoutes(r)

			dishHandler := handler.NewDishHandler(queries)
			r.Route("/dishes", dishHandler.RegisterRoutes)
		})

		// Orders
		newOrderStore := func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore)
		orderHandler := handler.NewOrderHandler(orderService, queries, dispatcher, hub)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Payments
		gateway := service.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		paymentService := service.NewPaymentService(queries, gateway, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		paymentHandler := handler.NewPaymentHandler(paymentService, hub)
		r.Route("/payments", paymentHandler.RegisterRoutes)

		// Meal plans
		var gen planner.Generator
		if cfg.PlannerURL != "" {
			gen = planner.NewHTTPGenerator(cfg.PlannerURL, cfg.PlannerAPIKey)
		}
		planHandler := handler.NewPlanHandler(planner.New(gen))
		planHandler.RegisterRoutes(r)
	})

	log.Println("Router initialized with all handlers")
	return r
}

// StartDispatcher registers event consumers and starts the dispatch loop.
func StartDispatcher(ctx context.Context, dispatcher *events.Dispatcher, queries *database.Queries) {
	dispatcher.OnOrderDelivered(events.NewChefAggregator(queries))
	go dispatcher.Run(ctx)
}
