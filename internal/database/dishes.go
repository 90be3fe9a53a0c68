package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const dishColumns = `id, chef_id, name, description, price, calories, protein, carbs, fats, meal_type, is_available, created_at, updated_at`

func scanDish(row interface{ Scan(dest ...interface{}) error }) (Dish, error) {
	var d Dish
	err := row.Scan(
		&d.ID,
		&d.ChefID,
		&d.Name,
		&d.Description,
		&d.Price,
		&d.Calories,
		&d.Protein,
		&d.Carbs,
		&d.Fats,
		&d.MealType,
		&d.IsAvailable,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

const createDish = `
INSERT INTO dishes (chef_id, name, description, price, calories, protein, carbs, fats, meal_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + dishColumns

type CreateDishParams struct {
	ChefID      uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Calories    int32
	Protein     int32
	Carbs       int32
	Fats        int32
	MealType    string
}

func (q *Queries) CreateDish(ctx context.Context, arg CreateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, createDish,
		arg.ChefID, arg.Name, arg.Description, arg.Price,
		arg.Calories, arg.Protein, arg.Carbs, arg.Fats, arg.MealType)
	return scanDish(row)
}

const getDish = `
SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`

func (q *Queries) GetDish(ctx context.Context, id uuid.UUID) (Dish, error) {
	row := q.db.QueryRow(ctx, getDish, id)
	return scanDish(row)
}

const listDishesByChef = `
SELECT ` + dishColumns + ` FROM dishes
WHERE chef_id = $1 AND is_available = true
ORDER BY meal_type, name`

func (q *Queries) ListDishesByChef(ctx context.Context, chefID uuid.UUID) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listDishesByChef, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

const setDishAvailability = `
UPDATE dishes
SET is_available = $3, updated_at = now()
WHERE id = $1 AND chef_id = $2
RETURNING ` + dishColumns

type SetDishAvailabilityParams struct {
	ID          uuid.UUID
	ChefID      uuid.UUID
	IsAvailable bool
}

func (q *Queries) SetDishAvailability(ctx context.Context, arg SetDishAvailabilityParams) (Dish, error) {
	row := q.db.QueryRow(ctx, setDishAvailability, arg.ID, arg.ChefID, arg.IsAvailable)
	return scanDish(row)
}
