package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidMealType    = errors.New("invalid meal_type")
	ErrMissingMealName    = errors.New("meal_name is required")
	ErrInvalidChefID      = errors.New("invalid chef_id")
	ErrChefNotFound       = errors.New("chef not found")
	ErrInvalidDishID      = errors.New("invalid dish_id")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrMissingAddress     = errors.New("delivery_address is required")
	ErrInvalidDeliveryDay = errors.New("invalid delivery_date")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetChef(ctx context.Context, id uuid.UUID) (database.Chef, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
// Amounts are decimal strings; final_amount is derived here and frozen.
type CreateOrderRequest struct {
	CustomerID      uuid.UUID
	ChefID          string
	TotalAmount     string
	Discount        string
	Gst             string
	DeliveryAddress string
	DeliveryDate    string // YYYY-MM-DD
	DeliverySlot    string
	CustomerNotes   string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single meal line on the order.
type CreateOrderItemRequest struct {
	DishID   string
	MealName string
	MealType string
	Price    string
	Quantity int32
	Calories int32
	Protein  int32
	Carbs    int32
	Fats     int32
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order creation.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates the request, computes final_amount = total + gst -
// discount, and persists the order with its items atomically. The order number
// generation retries on unique constraint violations (two concurrent orders
// can draw the same random suffix on the same day).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.MealName == "" {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrMissingMealName)
		}
		if !isValidMealType(item.MealType) {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidMealType)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	if req.DeliveryAddress == "" {
		return nil, ErrMissingAddress
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// newOrderNumber generates MW + YYYYMMDD + 4 random digits.
func newOrderNumber() string {
	return fmt.Sprintf("MW%s%04d", time.Now().Format("20060102"), rand.IntN(10000))
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	chefID, err := uuid.Parse(req.ChefID)
	if err != nil {
		return nil, ErrInvalidChefID
	}

	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("total_amount: %w", ErrInvalidAmount)
	}
	discount, err := parseAmount(req.Discount)
	if err != nil {
		return nil, fmt.Errorf("discount: %w", ErrInvalidAmount)
	}
	gst, err := parseAmount(req.Gst)
	if err != nil {
		return nil, fmt.Errorf("gst: %w", ErrInvalidAmount)
	}

	// The caller-supplied total is trusted; final_amount is derived once here
	// and never recomputed.
	finalAmount := total.Add(gst).Sub(discount)
	if finalAmount.IsNegative() {
		return nil, fmt.Errorf("final_amount: %w", ErrInvalidAmount)
	}

	deliveryDate := pgtype.Date{}
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, ErrInvalidDeliveryDay
		}
		deliveryDate = pgtype.Date{Time: t, Valid: true}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetChef(ctx, chefID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChefNotFound
		}
		return nil, fmt.Errorf("get chef: %w", err)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:     newOrderNumber(),
		CustomerID:      req.CustomerID,
		ChefID:          chefID,
		TotalAmount:     decimalToNumeric(total),
		Discount:        decimalToNumeric(discount),
		Gst:             decimalToNumeric(gst),
		FinalAmount:     decimalToNumeric(finalAmount),
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDate:    deliveryDate,
		DeliverySlot:    textOrNull(req.DeliverySlot),
		CustomerNotes:   textOrNull(req.CustomerNotes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		price, err := parseAmount(item.Price)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidPrice)
		}

		dishID := pgtype.UUID{}
		if item.DishID != "" {
			did, err := uuid.Parse(item.DishID)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidDishID)
			}
			dishID = pgtype.UUID{Bytes: did, Valid: true}
		}

		created, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			DishID:   dishID,
			MealName: item.MealName,
			MealType: item.MealType,
			Price:    decimalToNumeric(price),
			Quantity: item.Quantity,
			Calories: item.Calories,
			Protein:  item.Protein,
			Carbs:    item.Carbs,
			Fats:     item.Fats,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// --- Helpers ---

func isValidMealType(s string) bool {
	switch s {
	case enum.MealTypeBreakfast, enum.MealTypeLunch, enum.MealTypeDinner, enum.MealTypeSnack:
		return true
	}
	return false
}

// parseAmount parses a non-negative decimal string; empty means zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount")
	}
	return d, nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
