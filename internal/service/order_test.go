package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mealwell/api/internal/database"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getChefFn         func(ctx context.Context, id uuid.UUID) (database.Chef, error)
	createOrderFn     func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

func (m *mockOrderStore) GetChef(ctx context.Context, id uuid.UUID) (database.Chef, error) {
	return m.getChefFn(ctx, id)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func newTestService(store *mockOrderStore) (*OrderService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore), tx
}

// defaultStore returns a mockOrderStore with sensible defaults.
// Individual tests override the functions they care about.
func defaultStore(chefID uuid.UUID) *mockOrderStore {
	return &mockOrderStore{
		getChefFn: func(ctx context.Context, id uuid.UUID) (database.Chef, error) {
			if id == chefID {
				return database.Chef{ID: chefID, KitchenName: "Amma's Kitchen", IsActive: true}, nil
			}
			return database.Chef{}, pgx.ErrNoRows
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID:              uuid.New(),
				OrderNumber:     arg.OrderNumber,
				CustomerID:      arg.CustomerID,
				ChefID:          arg.ChefID,
				Status:          "pending",
				PaymentStatus:   "pending",
				TotalAmount:     arg.TotalAmount,
				Discount:        arg.Discount,
				Gst:             arg.Gst,
				FinalAmount:     arg.FinalAmount,
				DeliveryAddress: arg.DeliveryAddress,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID:       uuid.New(),
				OrderID:  arg.OrderID,
				DishID:   arg.DishID,
				MealName: arg.MealName,
				MealType: arg.MealType,
				Price:    arg.Price,
				Quantity: arg.Quantity,
				Calories: arg.Calories,
			}, nil
		},
	}
}

func basicReq(chefID uuid.UUID) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:      uuid.New(),
		ChefID:          chefID.String(),
		TotalAmount:     "500.00",
		Discount:        "50.00",
		Gst:             "25.00",
		DeliveryAddress: "12 MG Road, Bengaluru",
		Items: []CreateOrderItemRequest{
			{MealName: "Dal Khichdi", MealType: "lunch", Price: "250.00", Quantity: 2, Calories: 450},
		},
	}
}

// =====================
// Validation tests
// =====================

func TestCreateOrder_EmptyItems(t *testing.T) {
	store := defaultStore(uuid.New())
	svc, _ := newTestService(store)

	req := basicReq(uuid.New())
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got: %v", err)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	chefID := uuid.New()
	svc, _ := newTestService(defaultStore(chefID))

	req := basicReq(chefID)
	req.Items[0].Quantity = 0

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestCreateOrder_InvalidMealType(t *testing.T) {
	chefID := uuid.New()
	svc, _ := newTestService(defaultStore(chefID))

	req := basicReq(chefID)
	req.Items[0].MealType = "brunch"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidMealType) {
		t.Fatalf("expected ErrInvalidMealType, got: %v", err)
	}
}

func TestCreateOrder_MissingAddress(t *testing.T) {
	chefID := uuid.New()
	svc, _ := newTestService(defaultStore(chefID))

	req := basicReq(chefID)
	req.DeliveryAddress = ""

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress, got: %v", err)
	}
}

func TestCreateOrder_ChefNotFound(t *testing.T) {
	svc, _ := newTestService(defaultStore(uuid.New()))

	req := basicReq(uuid.New()) // store knows a different chef
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrChefNotFound) {
		t.Fatalf("expected ErrChefNotFound, got: %v", err)
	}
}

func TestCreateOrder_BadAmount(t *testing.T) {
	chefID := uuid.New()
	svc, _ := newTestService(defaultStore(chefID))

	req := basicReq(chefID)
	req.TotalAmount = "lots"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

func TestCreateOrder_NegativeFinalAmount(t *testing.T) {
	chefID := uuid.New()
	svc, _ := newTestService(defaultStore(chefID))

	req := basicReq(chefID)
	req.TotalAmount = "100.00"
	req.Discount = "200.00"
	req.Gst = "0.00"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

// =====================
// Happy path
// =====================

func TestCreateOrder_ComputesFinalAmount(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)

	var captured database.CreateOrderParams
	inner := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		captured = arg
		return inner(ctx, arg)
	}

	svc, tx := newTestService(store)

	result, err := svc.CreateOrder(context.Background(), basicReq(chefID))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// 500 + 25 - 50
	if !numericEquals(captured.FinalAmount, "475.00") {
		t.Errorf("final amount: got %v, want 475.00", numericToDecimal(captured.FinalAmount))
	}
	if !tx.committed {
		t.Error("expected transaction commit")
	}
	if len(result.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(result.Items))
	}
	if result.Items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", result.Items[0].Quantity)
	}
}

func TestCreateOrder_OrderNumberFormat(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)
	svc, _ := newTestService(store)

	result, err := svc.CreateOrder(context.Background(), basicReq(chefID))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if !regexp.MustCompile(`^MW\d{12}$`).MatchString(result.Order.OrderNumber) {
		t.Errorf("order number %q does not match MW + 12 digits", result.Order.OrderNumber)
	}
}

func TestCreateOrder_EmptyMoneyFieldsDefaultToZero(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)

	var captured database.CreateOrderParams
	inner := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		captured = arg
		return inner(ctx, arg)
	}

	svc, _ := newTestService(store)

	req := basicReq(chefID)
	req.Discount = ""
	req.Gst = ""

	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !numericEquals(captured.FinalAmount, "500.00") {
		t.Errorf("final amount: got %v, want 500.00", numericToDecimal(captured.FinalAmount))
	}
}

// =====================
// Order number conflict retry
// =====================

func TestCreateOrder_RetriesOnOrderNumberConflict(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)

	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
	attempts := 0
	inner := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		attempts++
		if attempts < 3 {
			return database.Order{}, conflict
		}
		return inner(ctx, arg)
	}

	svc, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), basicReq(chefID))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestCreateOrder_GivesUpAfterMaxRetries(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)

	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		return database.Order{}, conflict
	}

	svc, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), basicReq(chefID))
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("expected conflict error after retries, got: %v", err)
	}
}

func TestCreateOrder_DoesNotRetryOtherErrors(t *testing.T) {
	chefID := uuid.New()
	store := defaultStore(chefID)

	boom := errors.New("connection reset")
	attempts := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		attempts++
		return database.Order{}, boom
	}

	svc, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), basicReq(chefID))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts: got %d, want 1", attempts)
	}
}

func TestMakeNumericHelper(t *testing.T) {
	if !numericEquals(makeNumeric("12.34"), "12.34") {
		t.Error("makeNumeric round trip failed")
	}
}
