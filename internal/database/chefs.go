package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const chefColumns = `id, user_id, kitchen_name, bio, cuisine, rating, reviews_count, meals_delivered, is_active, created_at, updated_at`

func scanChef(row interface{ Scan(dest ...interface{}) error }) (Chef, error) {
	var c Chef
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.KitchenName,
		&c.Bio,
		&c.Cuisine,
		&c.Rating,
		&c.ReviewsCount,
		&c.MealsDelivered,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

const createChef = `
INSERT INTO chefs (user_id, kitchen_name, bio, cuisine)
VALUES ($1, $2, $3, $4)
RETURNING ` + chefColumns

type CreateChefParams struct {
	UserID      uuid.UUID
	KitchenName string
	Bio         pgtype.Text
	Cuisine     pgtype.Text
}

func (q *Queries) CreateChef(ctx context.Context, arg CreateChefParams) (Chef, error) {
	row := q.db.QueryRow(ctx, createChef, arg.UserID, arg.KitchenName, arg.Bio, arg.Cuisine)
	return scanChef(row)
}

const getChef = `
SELECT ` + chefColumns + ` FROM chefs WHERE id = $1`

func (q *Queries) GetChef(ctx context.Context, id uuid.UUID) (Chef, error) {
	row := q.db.QueryRow(ctx, getChef, id)
	return scanChef(row)
}

const getChefByUserID = `
SELECT ` + chefColumns + ` FROM chefs WHERE user_id = $1`

func (q *Queries) GetChefByUserID(ctx context.Context, userID uuid.UUID) (Chef, error) {
	row := q.db.QueryRow(ctx, getChefByUserID, userID)
	return scanChef(row)
}

const listChefs = `
SELECT ` + chefColumns + ` FROM chefs
WHERE is_active = true
ORDER BY rating DESC, created_at
LIMIT $1 OFFSET $2`

type ListChefsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListChefs(ctx context.Context, arg ListChefsParams) ([]Chef, error) {
	rows, err := q.db.Query(ctx, listChefs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chefs []Chef
	for rows.Next() {
		c, err := scanChef(rows)
		if err != nil {
			return nil, err
		}
		chefs = append(chefs, c)
	}
	return chefs, rows.Err()
}

const incrementChefMealsDelivered = `
UPDATE chefs
SET meals_delivered = meals_delivered + $2, updated_at = now()
WHERE id = $1
RETURNING ` + chefColumns

type IncrementChefMealsDeliveredParams struct {
	ID    uuid.UUID
	Count int32
}

func (q *Queries) IncrementChefMealsDelivered(ctx context.Context, arg IncrementChefMealsDeliveredParams) (Chef, error) {
	row := q.db.QueryRow(ctx, incrementChefMealsDelivered, arg.ID, arg.Count)
	return scanChef(row)
}
