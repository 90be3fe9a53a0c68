package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/middleware"
	"github.com/mealwell/api/internal/service"
	"github.com/mealwell/api/internal/ws"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.PaymentService; narrow interface for testability.
type PaymentServicer interface {
	CreateIntent(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error)
	Verify(ctx context.Context, req service.VerifyRequest) (database.Order, error)
}

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	svc PaymentServicer
	hub Broadcaster
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer, hub Broadcaster) *PaymentHandler {
	return &PaymentHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter: /payments
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create-order", h.CreateOrder)
	r.Post("/verify", h.Verify)
}

// --- Request / Response types ---

type createPaymentOrderRequest struct {
	OrderID string `json:"order_id"`
}

type createPaymentOrderResponse struct {
	RazorpayOrderID string `json:"razorpay_order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
}

type verifyPaymentRequest struct {
	OrderID           string `json:"order_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// --- Handlers ---

// CreateOrder handles POST /payments/create-order.
// Creates a provider-side order for the internal order's final amount.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createPaymentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
		return
	}

	result, err := h.svc.CreateIntent(r.Context(), service.CreateIntentRequest{
		OrderID:    orderID,
		CustomerID: claims.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrNotOrderOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		case errors.Is(err, service.ErrOrderNotPayable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order is not awaiting payment"})
		case errors.Is(err, service.ErrInvalidAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order has no payable amount"})
		case errors.Is(err, service.ErrGateway):
			log.Printf("ERROR: create payment order: %v", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway unavailable"})
		default:
			log.Printf("ERROR: create payment order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, createPaymentOrderResponse{
		RazorpayOrderID: result.RazorpayOrderID,
		Amount:          result.AmountPaise,
		Currency:        result.Currency,
		KeyID:           result.KeyID,
	})
}

// Verify handles POST /payments/verify.
// A valid signature confirms the order exactly once; replays are no-ops.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "razorpay_order_id, razorpay_payment_id and razorpay_signature are required",
		})
		return
	}

	order, err := h.svc.Verify(r.Context(), service.VerifyRequest{
		OrderID:           orderID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidSignature):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment signature"})
		case errors.Is(err, service.ErrOrderNotPayable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order is not awaiting payment"})
		default:
			log.Printf("ERROR: verify payment: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := dbOrderToResponse(order)

	if h.hub != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.hub.BroadcastToChef(order.ChefID, ws.Event{Type: "order_status_changed", Payload: payload})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
