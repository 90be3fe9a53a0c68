package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/handler"
	"github.com/mealwell/api/internal/middleware"
	"github.com/mealwell/api/internal/service"
)

// --- Mock PaymentServicer ---

type mockPaymentService struct {
	createIntentFn func(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error)
	verifyFn       func(ctx context.Context, req service.VerifyRequest) (database.Order, error)
}

func (m *mockPaymentService) CreateIntent(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error) {
	return m.createIntentFn(ctx, req)
}

func (m *mockPaymentService) Verify(ctx context.Context, req service.VerifyRequest) (database.Order, error) {
	return m.verifyFn(ctx, req)
}

func setupPaymentRouter(svc *mockPaymentService, hub *mockHub) *chi.Mux {
	h := handler.NewPaymentHandler(svc, hub)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/payments", h.RegisterRoutes)
	return r
}

// --- CreateOrder ---

func TestPaymentCreateOrder_HappyPath(t *testing.T) {
	claims := customerClaims()
	orderID := uuid.New()

	svc := &mockPaymentService{
		createIntentFn: func(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error) {
			if req.OrderID != orderID {
				t.Errorf("order_id: got %v, want %v", req.OrderID, orderID)
			}
			if req.CustomerID != claims.UserID {
				t.Errorf("customer_id: got %v, want %v", req.CustomerID, claims.UserID)
			}
			return &service.IntentResult{
				RazorpayOrderID: "order_rzp987",
				AmountPaise:     47500,
				Currency:        "INR",
				KeyID:           "rzp_test_key",
			}, nil
		},
	}
	router := setupPaymentRouter(svc, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/payments/create-order",
		map[string]string{"order_id": orderID.String()}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["razorpay_order_id"] != "order_rzp987" {
		t.Errorf("razorpay_order_id: got %v", resp["razorpay_order_id"])
	}
	if resp["amount"] != float64(47500) {
		t.Errorf("amount: got %v, want 47500", resp["amount"])
	}
	if resp["currency"] != "INR" {
		t.Errorf("currency: got %v", resp["currency"])
	}
}

func TestPaymentCreateOrder_InvalidOrderID(t *testing.T) {
	router := setupPaymentRouter(&mockPaymentService{}, &mockHub{})
	rr := doAuthRequest(t, router, "POST", "/payments/create-order",
		map[string]string{"order_id": "not-a-uuid"}, customerClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPaymentCreateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"not owner", service.ErrNotOrderOwner, http.StatusForbidden},
		{"not payable", service.ErrOrderNotPayable, http.StatusBadRequest},
		{"gateway down", service.ErrGateway, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockPaymentService{
				createIntentFn: func(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error) {
					return nil, tc.err
				},
			}
			router := setupPaymentRouter(svc, &mockHub{})
			rr := doAuthRequest(t, router, "POST", "/payments/create-order",
				map[string]string{"order_id": uuid.New().String()}, customerClaims())

			if rr.Code != tc.want {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

// --- Verify ---

func verifyBody(orderID uuid.UUID) map[string]string {
	return map[string]string{
		"order_id":            orderID.String(),
		"razorpay_order_id":   "order_rzp987",
		"razorpay_payment_id": "pay_abc123",
		"razorpay_signature":  "deadbeef",
	}
}

func TestPaymentVerify_Success(t *testing.T) {
	claims := customerClaims()
	chefID := uuid.New()
	order := testOrder(t, claims.UserID, chefID, "confirmed")
	order.PaymentStatus = "paid"
	order.RazorpayPaymentID = pgtype.Text{String: "pay_abc123", Valid: true}

	svc := &mockPaymentService{
		verifyFn: func(ctx context.Context, req service.VerifyRequest) (database.Order, error) {
			if req.RazorpaySignature != "deadbeef" {
				t.Errorf("signature: got %q", req.RazorpaySignature)
			}
			return order, nil
		},
	}
	hub := &mockHub{}
	router := setupPaymentRouter(svc, hub)

	rr := doAuthRequest(t, router, "POST", "/payments/verify", verifyBody(order.ID), claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["payment_status"] != "paid" {
		t.Errorf("payment_status: got %v, want paid", resp["payment_status"])
	}
	if resp["status"] != "confirmed" {
		t.Errorf("status: got %v, want confirmed", resp["status"])
	}
	if len(hub.calls) != 1 || hub.calls[0].event.Type != "order_status_changed" {
		t.Errorf("expected order_status_changed broadcast, got %+v", hub.calls)
	}
	if len(hub.calls) == 1 && hub.calls[0].chefID != chefID {
		t.Errorf("broadcast chef: got %v, want %v", hub.calls[0].chefID, chefID)
	}
}

func TestPaymentVerify_BadSignature(t *testing.T) {
	svc := &mockPaymentService{
		verifyFn: func(ctx context.Context, req service.VerifyRequest) (database.Order, error) {
			return database.Order{}, service.ErrInvalidSignature
		},
	}
	router := setupPaymentRouter(svc, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/payments/verify", verifyBody(uuid.New()), customerClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestPaymentVerify_MissingFields(t *testing.T) {
	router := setupPaymentRouter(&mockPaymentService{}, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/payments/verify", map[string]string{
		"order_id":          uuid.New().String(),
		"razorpay_order_id": "order_rzp987",
	}, customerClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
