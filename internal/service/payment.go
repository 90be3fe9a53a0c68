package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the payment service.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotOrderOwner    = errors.New("order does not belong to caller")
	ErrOrderNotPayable  = errors.New("order is not awaiting payment")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrGateway          = errors.New("payment gateway error")
)

// Gateway creates provider-side payment orders. Satisfied by
// *RazorpayGateway; narrow interface for testability.
type Gateway interface {
	CreatePaymentOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error)
}

// PaymentStore defines the DB methods needed by the payment service.
// Satisfied by *database.Queries.
type PaymentStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetRazorpayOrderID(ctx context.Context, arg database.SetRazorpayOrderIDParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
}

// PaymentService bridges orders to the payment provider and verifies
// provider signatures before confirming payment.
type PaymentService struct {
	store     PaymentStore
	gateway   Gateway
	keyID     string
	keySecret string
}

func NewPaymentService(store PaymentStore, gateway Gateway, keyID, keySecret string) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, keyID: keyID, keySecret: keySecret}
}

// CreateIntentRequest asks the provider for an order scoped to the order's
// stored final amount.
type CreateIntentRequest struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
}

// IntentResult is what the client needs to open the provider checkout.
type IntentResult struct {
	RazorpayOrderID string
	AmountPaise     int64
	Currency        string
	KeyID           string
}

// CreateIntent loads the order, checks ownership, creates a provider order
// for the amount in paise with a receipt embedding the internal order id, and
// stores the provider order id.
func (s *PaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResult, error) {
	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.CustomerID != req.CustomerID {
		return nil, ErrNotOrderOwner
	}
	if order.PaymentStatus != enum.PaymentStatusPending {
		return nil, ErrOrderNotPayable
	}

	amount := numericToDecimal(order.FinalAmount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	receipt := "order_" + order.ID.String()
	rzpOrderID, err := s.gateway.CreatePaymentOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if _, err := s.store.SetRazorpayOrderID(ctx, database.SetRazorpayOrderIDParams{
		ID:              order.ID,
		RazorpayOrderID: rzpOrderID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Payment landed between our read and write.
			return nil, ErrOrderNotPayable
		}
		return nil, fmt.Errorf("store razorpay order id: %w", err)
	}

	return &IntentResult{
		RazorpayOrderID: rzpOrderID,
		AmountPaise:     amountPaise,
		Currency:        "INR",
		KeyID:           s.keyID,
	}, nil
}

// VerifyRequest carries the provider callback fields.
type VerifyRequest struct {
	OrderID           uuid.UUID
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// Verify recomputes the provider signature and, on a constant-time match,
// marks the order paid and confirmed exactly once. A replayed valid
// verification returns the already-paid order unchanged. Any mismatch leaves
// the order untouched.
func (s *PaymentService) Verify(ctx context.Context, req VerifyRequest) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	expected := SignPayment(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.RazorpaySignature)) {
		return database.Order{}, ErrInvalidSignature
	}

	updated, err := s.store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
		ID:                order.ID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The compare-and-set found no unpaid order. A replay of the same
			// verification is a no-op; anything else cannot be paid anymore.
			if order.PaymentStatus == enum.PaymentStatusPaid &&
				order.RazorpayPaymentID.Valid &&
				order.RazorpayPaymentID.String == req.RazorpayPaymentID {
				return order, nil
			}
			return database.Order{}, ErrOrderNotPayable
		}
		return database.Order{}, fmt.Errorf("mark order paid: %w", err)
	}

	return updated, nil
}

// SignPayment computes the provider signature scheme:
// hex(HMAC-SHA256(secret, razorpayOrderID + "|" + razorpayPaymentID)).
func SignPayment(secret, razorpayOrderID, razorpayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
