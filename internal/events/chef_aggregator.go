package events

import (
	"context"

	"github.com/mealwell/api/internal/database"
)

// ChefStore defines the database method needed to update chef aggregates.
// Satisfied by *database.Queries.
type ChefStore interface {
	IncrementChefMealsDelivered(ctx context.Context, arg database.IncrementChefMealsDeliveredParams) (database.Chef, error)
}

// ChefAggregator applies delivery events to the chef's meals_delivered
// counter, keeping the increment out of the order transition handler.
type ChefAggregator struct {
	store ChefStore
}

func NewChefAggregator(store ChefStore) *ChefAggregator {
	return &ChefAggregator{store: store}
}

func (a *ChefAggregator) HandleOrderDelivered(ctx context.Context, e OrderDelivered) error {
	_, err := a.store.IncrementChefMealsDelivered(ctx, database.IncrementChefMealsDeliveredParams{
		ID:    e.ChefID,
		Count: e.MealCount,
	})
	return err
}
