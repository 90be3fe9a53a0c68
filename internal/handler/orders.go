package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/enum"
	"github.com/mealwell/api/internal/events"
	"github.com/mealwell/api/internal/middleware"
	"github.com/mealwell/api/internal/service"
	"github.com/mealwell/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetChefByUserID(ctx context.Context, userID uuid.UUID) (database.Chef, error)
	ListOrdersByCustomer(ctx context.Context, arg database.ListOrdersByCustomerParams) ([]database.Order, error)
	ListOrdersByChef(ctx context.Context, arg database.ListOrdersByChefParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	SumOrderItemQuantities(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// EventPublisher publishes domain events from the order write path.
// Satisfied by *events.Dispatcher.
type EventPublisher interface {
	PublishOrderDelivered(e events.OrderDelivered)
}

// Broadcaster pushes order events to connected chef dashboards.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToChef(chefID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	store  OrderStore
	events EventPublisher
	hub    Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, events EventPublisher, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, events: events, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter: /orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	ChefID          string                   `json:"chef_id"`
	TotalAmount     string                   `json:"total_amount"`
	Discount        string                   `json:"discount"`
	Gst             string                   `json:"gst"`
	DeliveryAddress string                   `json:"delivery_address"`
	DeliveryDate    string                   `json:"delivery_date"`
	DeliverySlot    string                   `json:"delivery_slot"`
	CustomerNotes   string                   `json:"customer_notes"`
	Items           []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	DishID   string `json:"dish_id"`
	MealName string `json:"meal_name"`
	MealType string `json:"meal_type"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
	Calories int32  `json:"calories"`
	Protein  int32  `json:"protein"`
	Carbs    int32  `json:"carbs"`
	Fats     int32  `json:"fats"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	ChefID            uuid.UUID           `json:"chef_id"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	TotalAmount       string              `json:"total_amount"`
	Discount          string              `json:"discount"`
	Gst               string              `json:"gst"`
	FinalAmount       string              `json:"final_amount"`
	DeliveryAddress   string              `json:"delivery_address"`
	DeliveryDate      *string             `json:"delivery_date"`
	DeliverySlot      *string             `json:"delivery_slot"`
	CustomerNotes     *string             `json:"customer_notes"`
	ChefNotes         *string             `json:"chef_notes"`
	CancelReason      *string             `json:"cancel_reason"`
	RazorpayOrderID   *string             `json:"razorpay_order_id"`
	RazorpayPaymentID *string             `json:"razorpay_payment_id"`
	ConfirmedAt       *time.Time          `json:"confirmed_at"`
	PreparingAt       *time.Time          `json:"preparing_at"`
	ReadyAt           *time.Time          `json:"ready_at"`
	OutForDeliveryAt  *time.Time          `json:"out_for_delivery_at"`
	DeliveredAt       *time.Time          `json:"delivered_at"`
	CancelledAt       *time.Time          `json:"cancelled_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Items             []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID       uuid.UUID `json:"id"`
	DishID   *string   `json:"dish_id"`
	MealName string    `json:"meal_name"`
	MealType string    `json:"meal_type"`
	Price    string    `json:"price"`
	Quantity int32     `json:"quantity"`
	Calories int32     `json:"calories"`
	Protein  int32     `json:"protein"`
	Carbs    int32     `json:"carbs"`
	Fats     int32     `json:"fats"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	ChefNotes string `json:"chef_notes"`
}

type cancelOrderRequest struct {
	CancelReason string `json:"cancel_reason"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Validate required fields
	if req.ChefID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chef_id is required"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	for i, item := range req.Items {
		if item.MealName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "meal_name is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	// Build service request
	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			DishID:   item.DishID,
			MealName: item.MealName,
			MealType: item.MealType,
			Price:    item.Price,
			Quantity: item.Quantity,
			Calories: item.Calories,
			Protein:  item.Protein,
			Carbs:    item.Carbs,
			Fats:     item.Fats,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerID:      claims.UserID,
		ChefID:          req.ChefID,
		TotalAmount:     req.TotalAmount,
		Discount:        req.Discount,
		Gst:             req.Gst,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDate:    req.DeliveryDate,
		DeliverySlot:    req.DeliverySlot,
		CustomerNotes:   req.CustomerNotes,
		Items:           svcItems,
	})
	if err != nil {
		// Map known service errors to appropriate HTTP status codes.
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(it)
	}

	h.broadcast(result.Order.ChefID, "order_created", resp)

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders.
// Customers see their own orders; chefs see their incoming orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	// Parse pagination
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

	var status pgtype.Text
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		status = pgtype.Text{String: s, Valid: true}
	}

	var (
		orders []database.Order
		err    error
	)
	if claims.Role == enum.UserRoleChef {
		chef, chefErr := h.store.GetChefByUserID(r.Context(), claims.UserID)
		if chefErr != nil {
			if errors.Is(chefErr, pgx.ErrNoRows) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "no chef profile for user"})
				return
			}
			log.Printf("ERROR: get chef for list orders: %v", chefErr)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		orders, err = h.store.ListOrdersByChef(r.Context(), database.ListOrdersByChefParams{
			ChefID: chef.ID,
			Status: status,
			Limit:  int32(limit),
			Offset: int32(offset),
		})
	} else {
		orders, err = h.store.ListOrdersByCustomer(r.Context(), database.ListOrdersByCustomerParams{
			CustomerID: claims.UserID,
			Status:     status,
			Limit:      int32(limit),
			Offset:     int32(offset),
		})
	}
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
// Only the ordering customer or the fulfilling chef may read an order.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !h.canReadOrder(r.Context(), claims.UserID, claims.Role, order) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = dbOrderItemToResponse(it)
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /orders/{id}/status.
// Only the fulfilling chef moves an order through its lifecycle.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	chef, err := h.store.GetChefByUserID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "no chef profile for user"})
			return
		}
		log.Printf("ERROR: get chef for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Fetch current order to validate ownership and transition
	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if current.ChefID != chef.ID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "order belongs to another chef"})
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         orderID,
		ChefID:     chef.ID,
		Status:     req.Status,
		FromStatus: current.Status,
		ChefNotes:  textOrNull(req.ChefNotes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// If no rows were updated, the status changed between our read and write (race condition)
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if updated.Status == enum.OrderStatusDelivered {
		h.publishDelivered(r.Context(), updated)
	}

	resp := dbOrderToResponse(updated)
	h.broadcast(updated.ChefID, "order_status_changed", resp)

	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CancelReason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cancel_reason is required"})
		return
	}

	// Attempt to cancel the order. The SQL query enforces the precondition
	// atomically: it only updates while the order is still pending or confirmed
	// and owned by the caller.
	cancelled, err := h.store.CancelOrder(r.Context(), database.CancelOrderParams{
		ID:           orderID,
		CustomerID:   claims.UserID,
		CancelReason: req.CancelReason,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No rows updated means: order doesn't exist, belongs to someone
			// else, or is past the cancellable window. Fetch to tell them apart.
			current, fetchErr := h.store.GetOrder(r.Context(), orderID)
			if fetchErr != nil {
				if errors.Is(fetchErr, pgx.ErrNoRows) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
					return
				}
				log.Printf("ERROR: get order for cancel: %v", fetchErr)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			if current.CustomerID != claims.UserID {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
				return
			}
			if current.Status == enum.OrderStatusCancelled {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order is already cancelled"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order can no longer be cancelled"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(cancelled)
	h.broadcast(cancelled.ChefID, "order_status_changed", resp)

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// canReadOrder reports whether the caller owns the order as customer
// or fulfills it as chef.
func (h *OrderHandler) canReadOrder(ctx context.Context, userID uuid.UUID, role string, order database.Order) bool {
	if order.CustomerID == userID {
		return true
	}
	if role != enum.UserRoleChef {
		return false
	}
	chef, err := h.store.GetChefByUserID(ctx, userID)
	if err != nil {
		return false
	}
	return order.ChefID == chef.ID
}

// publishDelivered emits the OrderDelivered event with the meal count summed
// over item quantities. Failure to count the items only loses the aggregate
// bump, never the status update itself.
func (h *OrderHandler) publishDelivered(ctx context.Context, order database.Order) {
	if h.events == nil {
		return
	}
	count, err := h.store.SumOrderItemQuantities(ctx, order.ID)
	if err != nil {
		log.Printf("ERROR: sum order item quantities for order %s: %v", order.ID, err)
		return
	}
	h.events.PublishOrderDelivered(events.OrderDelivered{
		OrderID:   order.ID,
		ChefID:    order.ChefID,
		MealCount: int32(count),
	})
}

// broadcast pushes an order event to the chef's dashboard room.
func (h *OrderHandler) broadcast(chefID uuid.UUID, eventType string, resp orderResponse) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToChef(chefID, ws.Event{Type: eventType, Payload: payload})
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMealType) ||
		errors.Is(err, service.ErrMissingMealName) ||
		errors.Is(err, service.ErrInvalidChefID) ||
		errors.Is(err, service.ErrChefNotFound) ||
		errors.Is(err, service.ErrInvalidDishID) ||
		errors.Is(err, service.ErrInvalidAmount) ||
		errors.Is(err, service.ErrInvalidPrice) ||
		errors.Is(err, service.ErrMissingAddress) ||
		errors.Is(err, service.ErrInvalidDeliveryDay)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// dbOrderToResponse converts a database.Order to an orderResponse.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		ChefID:            o.ChefID,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		TotalAmount:       numericToString(o.TotalAmount),
		Discount:          numericToString(o.Discount),
		Gst:               numericToString(o.Gst),
		FinalAmount:       numericToString(o.FinalAmount),
		DeliveryAddress:   o.DeliveryAddress,
		DeliverySlot:      textPtr(o.DeliverySlot),
		CustomerNotes:     textPtr(o.CustomerNotes),
		ChefNotes:         textPtr(o.ChefNotes),
		CancelReason:      textPtr(o.CancelReason),
		RazorpayOrderID:   textPtr(o.RazorpayOrderID),
		RazorpayPaymentID: textPtr(o.RazorpayPaymentID),
		ConfirmedAt:       timePtr(o.ConfirmedAt),
		PreparingAt:       timePtr(o.PreparingAt),
		ReadyAt:           timePtr(o.ReadyAt),
		OutForDeliveryAt:  timePtr(o.OutForDeliveryAt),
		DeliveredAt:       timePtr(o.DeliveredAt),
		CancelledAt:       timePtr(o.CancelledAt),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if o.DeliveryDate.Valid {
		s := o.DeliveryDate.Time.Format("2006-01-02")
		resp.DeliveryDate = &s
	}

	return resp
}

// dbOrderItemToResponse converts a database.OrderItem to an orderItemResponse.
func dbOrderItemToResponse(item database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:       item.ID,
		MealName: item.MealName,
		MealType: item.MealType,
		Price:    numericToString(item.Price),
		Quantity: item.Quantity,
		Calories: item.Calories,
		Protein:  item.Protein,
		Carbs:    item.Carbs,
		Fats:     item.Fats,
	}

	if item.DishID.Valid {
		s := uuid.UUID(item.DishID.Bytes).String()
		resp.DishID = &s
	}

	return resp
}

// isValidOrderStatus checks if the given status is a valid order status.
func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending,
		enum.OrderStatusConfirmed,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
		enum.OrderStatusOutForDelivery,
		enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions defines valid chef-driven status transitions.
// Key is current status, value is the set of statuses it can transition to.
// Cancellation is customer-driven and goes through Cancel, not here.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:        {enum.OrderStatusConfirmed},
	enum.OrderStatusConfirmed:      {enum.OrderStatusPreparing},
	enum.OrderStatusPreparing:      {enum.OrderStatusReady},
	enum.OrderStatusReady:          {enum.OrderStatusOutForDelivery},
	enum.OrderStatusOutForDelivery: {enum.OrderStatusDelivered},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
