package domain

import "context"

// RecipeRepository defines the data-access contract for recipe operations.
type RecipeRepository interface {
	// Create persists a validated recipe inside a single transaction.
	Create(ctx context.Context, recipe ValidatedRecipe) (*Recipe, error)

	// ListByUser returns the recipes owned by userID ordered by ID.
	ListByUser(ctx context.Context, userID int) ([]Recipe, error)
}
