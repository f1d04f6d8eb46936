package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/recipe-service/internal/core/domain"
	"github.com/duynhne/recipe-service/middleware"
)

// RecipeService implements the per-user recipe rules.
type RecipeService struct {
	users   domain.UserRepository
	recipes domain.RecipeRepository
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(users domain.UserRepository, recipes domain.RecipeRepository) *RecipeService {
	return &RecipeService{
		users:   users,
		recipes: recipes,
	}
}

// List returns the owner and the recipes they own.
func (s *RecipeService) List(ctx context.Context, userID int) (*domain.User, []domain.Recipe, error) {
	ctx, span := middleware.StartSpan(ctx, "recipes.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", userID),
	))
	defer span.End()

	owner, err := s.owner(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	recipes, err := s.recipes.ListByUser(ctx, owner.ID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("list recipes: %w", err)
	}

	span.SetAttributes(attribute.Int("recipes.count", len(recipes)))
	return owner, recipes, nil
}

// Create validates input on behalf of userID and persists it. The owner is
// always userID; input.UserID is overwritten.
// Validation failures are returned as *domain.ValidationError.
func (s *RecipeService) Create(ctx context.Context, userID int, input domain.RecipeInput) (*domain.User, *domain.Recipe, error) {
	ctx, span := middleware.StartSpan(ctx, "recipes.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", userID),
	))
	defer span.End()

	owner, err := s.owner(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	input.UserID = owner.ID
	validated, err := domain.ValidateRecipe(input)
	if err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, nil, err
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	recipe, err := s.recipes.Create(ctx, validated)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("create recipe: %w", err)
	}

	span.AddEvent("recipe.created")
	return owner, recipe, nil
}

func (s *RecipeService) owner(ctx context.Context, userID int) (*domain.User, error) {
	if userID == 0 {
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("lookup user %d: %w", userID, ErrUserNotFound)
	}
	return user, nil
}
