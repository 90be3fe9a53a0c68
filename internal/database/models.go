package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Chef struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	KitchenName    string
	Bio            pgtype.Text
	Cuisine        pgtype.Text
	Rating         pgtype.Numeric
	ReviewsCount   int32
	MealsDelivered int32
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Dish struct {
	ID          uuid.UUID
	ChefID      uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Calories    int32
	Protein     int32
	Carbs       int32
	Fats        int32
	MealType    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID                uuid.UUID
	OrderNumber       string
	CustomerID        uuid.UUID
	ChefID            uuid.UUID
	Status            string
	PaymentStatus     string
	TotalAmount       pgtype.Numeric
	Discount          pgtype.Numeric
	Gst               pgtype.Numeric
	FinalAmount       pgtype.Numeric
	DeliveryAddress   string
	DeliveryDate      pgtype.Date
	DeliverySlot      pgtype.Text
	CustomerNotes     pgtype.Text
	ChefNotes         pgtype.Text
	CancelReason      pgtype.Text
	RazorpayOrderID   pgtype.Text
	RazorpayPaymentID pgtype.Text
	RazorpaySignature pgtype.Text
	ConfirmedAt       pgtype.Timestamptz
	PreparingAt       pgtype.Timestamptz
	ReadyAt           pgtype.Timestamptz
	OutForDeliveryAt  pgtype.Timestamptz
	DeliveredAt       pgtype.Timestamptz
	CancelledAt       pgtype.Timestamptz
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderItem struct {
	ID       uuid.UUID
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
