package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, customer_id, chef_id, status, payment_status,
	total_amount, discount, gst, final_amount,
	delivery_address, delivery_date, delivery_slot, customer_notes, chef_notes, cancel_reason,
	razorpay_order_id, razorpay_payment_id, razorpay_signature,
	confirmed_at, preparing_at, ready_at, out_for_delivery_at, delivered_at, cancelled_at,
	created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.ChefID,
		&o.Status,
		&o.PaymentStatus,
		&o.TotalAmount,
		&o.Discount,
		&o.Gst,
		&o.FinalAmount,
		&o.DeliveryAddress,
		&o.DeliveryDate,
		&o.DeliverySlot,
		&o.CustomerNotes,
		&o.ChefNotes,
		&o.CancelReason,
		&o.RazorpayOrderID,
		&o.RazorpayPaymentID,
		&o.RazorpaySignature,
		&o.ConfirmedAt,
		&o.PreparingAt,
		&o.ReadyAt,
		&o.OutForDeliveryAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

const createOrder = `
INSERT INTO orders (
	order_number, customer_id, chef_id,
	total_amount, discount, gst, final_amount,
	delivery_address, delivery_date, delivery_slot, customer_notes
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber     string
	CustomerID      uuid.UUID
	ChefID          uuid.UUID
	TotalAmount     pgtype.Numeric
	Discount        pgtype.Numeric
	Gst             pgtype.Numeric
	FinalAmount     pgtype.Numeric
	DeliveryAddress string
	DeliveryDate    pgtype.Date
	DeliverySlot    pgtype.Text
	CustomerNotes   pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.CustomerID, arg.ChefID,
		arg.TotalAmount, arg.Discount, arg.Gst, arg.FinalAmount,
		arg.DeliveryAddress, arg.DeliveryDate, arg.DeliverySlot, arg.CustomerNotes)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, dish_id, meal_name, meal_type, price, quantity, calories, protein, carbs, fats)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, order_id, dish_id, meal_name, meal_type, price, quantity, calories, protein, carbs, fats`

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	DishID   pgtype.UUID
	MealName string
	MealType string
	Price    pgtype.Numeric
	Quantity int32
	Calories int32
	Protein  int32
	Carbs    int32
	Fats     int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.DishID, arg.MealName, arg.MealType,
		arg.Price, arg.Quantity, arg.Calories, arg.Protein, arg.Carbs, arg.Fats)
	var it OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.DishID, &it.MealName, &it.MealType,
		&it.Price, &it.Quantity, &it.Calories, &it.Protein, &it.Carbs, &it.Fats)
	return it, err
}

const getOrder = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const listOrderItemsByOrder = `
SELECT id, order_id, dish_id, meal_name, meal_type, price, quantity, calories, protein, carbs, fats
FROM order_items WHERE order_id = $1 ORDER BY meal_type, meal_name`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.DishID, &it.MealName, &it.MealType,
			&it.Price, &it.Quantity, &it.Calories, &it.Protein, &it.Carbs, &it.Fats); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const listOrdersByCustomer = `
SELECT ` + orderColumns + ` FROM orders
WHERE customer_id = $1 AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

type ListOrdersByCustomerParams struct {
	CustomerID uuid.UUID
	Status     pgtype.Text
	Limit      int32
	Offset     int32
}

func (q *Queries) ListOrdersByCustomer(ctx context.Context, arg ListOrdersByCustomerParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByCustomer, arg.CustomerID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listOrdersByChef = `
SELECT ` + orderColumns + ` FROM orders
WHERE chef_id = $1 AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

type ListOrdersByChefParams struct {
	ChefID uuid.UUID
	Status pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrdersByChef(ctx context.Context, arg ListOrdersByChefParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByChef, arg.ChefID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// updateOrderStatus is a compare-and-set: the WHERE clause pins the expected
// current status so a concurrent transition surfaces as pgx.ErrNoRows instead
// of silently overwriting. Each stage timestamp is stamped at most once.
const updateOrderStatus = `
UPDATE orders SET
	status = $3,
	chef_notes = COALESCE($5, chef_notes),
	confirmed_at        = CASE WHEN $3 = 'confirmed'        THEN COALESCE(confirmed_at, now())        ELSE confirmed_at END,
	preparing_at        = CASE WHEN $3 = 'preparing'        THEN COALESCE(preparing_at, now())        ELSE preparing_at END,
	ready_at            = CASE WHEN $3 = 'ready'            THEN COALESCE(ready_at, now())            ELSE ready_at END,
	out_for_delivery_at = CASE WHEN $3 = 'out_for_delivery' THEN COALESCE(out_for_delivery_at, now()) ELSE out_for_delivery_at END,
	delivered_at        = CASE WHEN $3 = 'delivered'        THEN COALESCE(delivered_at, now())        ELSE delivered_at END,
	updated_at = now()
WHERE id = $1 AND chef_id = $2 AND status = $4
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	ChefID     uuid.UUID
	Status     string
	FromStatus string
	ChefNotes  pgtype.Text
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.ChefID, arg.Status, arg.FromStatus, arg.ChefNotes)
	return scanOrder(row)
}

// cancelOrder enforces the precondition atomically: only updates while the
// order is still pending or confirmed.
const cancelOrder = `
UPDATE orders SET
	status = 'cancelled',
	cancel_reason = $3,
	cancelled_at = now(),
	updated_at = now()
WHERE id = $1 AND customer_id = $2 AND status IN ('pending', 'confirmed')
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	CancelReason string
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.CustomerID, arg.CancelReason)
	return scanOrder(row)
}

// setRazorpayOrderID stores the gateway order id. Overwriting is allowed only
// while payment is still pending, so a retried intent replaces a stale id but
// a paid order keeps its correlation fields frozen.
const setRazorpayOrderID = `
UPDATE orders SET razorpay_order_id = $2, updated_at = now()
WHERE id = $1 AND payment_status = 'pending'
RETURNING ` + orderColumns

type SetRazorpayOrderIDParams struct {
	ID              uuid.UUID
	RazorpayOrderID string
}

func (q *Queries) SetRazorpayOrderID(ctx context.Context, arg SetRazorpayOrderIDParams) (Order, error) {
	row := q.db.QueryRow(ctx, setRazorpayOrderID, arg.ID, arg.RazorpayOrderID)
	return scanOrder(row)
}

// markOrderPaid flips the payment gate exactly once. The WHERE clause only
// matches an unpaid order, so a replayed verification finds zero rows and the
// caller falls back to returning the already-paid order unchanged.
const markOrderPaid = `
UPDATE orders SET
	payment_status = 'paid',
	status = 'confirmed',
	confirmed_at = COALESCE(confirmed_at, now()),
	razorpay_payment_id = $2,
	razorpay_signature = $3,
	updated_at = now()
WHERE id = $1 AND payment_status = 'pending' AND status = 'pending'
RETURNING ` + orderColumns

type MarkOrderPaidParams struct {
	ID                uuid.UUID
	RazorpayPaymentID string
	RazorpaySignature string
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderPaid, arg.ID, arg.RazorpayPaymentID, arg.RazorpaySignature)
	return scanOrder(row)
}

const sumOrderItemQuantities = `
SELECT COALESCE(SUM(quantity), 0)::bigint FROM order_items WHERE order_id = $1`

func (q *Queries) SumOrderItemQuantities(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, sumOrderItemQuantities, orderID).Scan(&total)
	return total, err
}
