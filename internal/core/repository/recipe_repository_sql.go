package repository

import (
	"context"
	"database/sql"
	"fmt"

	database "github.com/duynhne/recipe-service/internal/core"
	"github.com/duynhne/recipe-service/internal/core/domain"
)

var _ domain.RecipeRepository = (*SQLRecipeRepository)(nil)

// SQLRecipeRepository implements domain.RecipeRepository on database/sql.
type SQLRecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new SQLRecipeRepository.
func NewRecipeRepository(db *sql.DB) *SQLRecipeRepository {
	return &SQLRecipeRepository{db: db}
}

// Create persists a validated recipe. A failed insert leaves no row behind.
func (r *SQLRecipeRepository) Create(ctx context.Context, recipe domain.ValidatedRecipe) (*domain.Recipe, error) {
	query := `INSERT INTO recipes (title, instructions, minutes_to_complete, user_id) VALUES ($1, $2, $3, $4) RETURNING id`

	created := &domain.Recipe{
		Title:             recipe.Title(),
		Instructions:      recipe.Instructions(),
		MinutesToComplete: recipe.MinutesToComplete(),
		UserID:            recipe.UserID(),
	}

	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		return tx.QueryRowContext(ctx, query,
			created.Title, created.Instructions, created.MinutesToComplete, created.UserID,
		).Scan(&created.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}

	return created, nil
}

// ListByUser returns the recipes owned by userID ordered by ID.
func (r *SQLRecipeRepository) ListByUser(ctx context.Context, userID int) ([]domain.Recipe, error) {
	query := `SELECT id, title, instructions, minutes_to_complete, user_id FROM recipes WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		var rec domain.Recipe
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Instructions, &rec.MinutesToComplete, &rec.UserID); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	return recipes, nil
}
