package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/recipe-service/internal/core/domain"
	pkgzerolog "github.com/duynhne/recipe-service/internal/logger/zerolog"
	logicv1 "github.com/duynhne/recipe-service/internal/logic/v1"
	"github.com/duynhne/recipe-service/middleware"
)

// recipeRequest is the body of POST /recipes. Fields are untyped so that a
// wrong JSON type is reported as a validation message, not a decode error.
// A client-supplied user_id is not read.
type recipeRequest struct {
	Title             any `json:"title"`
	Instructions      any `json:"instructions"`
	MinutesToComplete any `json:"minutes_to_complete"`
}

func (r recipeRequest) input() domain.RecipeInput {
	return domain.RecipeInput{
		Title:             asString(r.Title),
		Instructions:      asString(r.Instructions),
		MinutesToComplete: r.MinutesToComplete,
	}
}

// ListRecipes handles GET /recipes.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	owner, recipes, err := h.recipes.List(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		switch {
		case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "401: Unauthorized"})
		default:
			span.RecordError(err)
			logger.Error().Err(err).Msg("List recipes failed")
			unprocessable(c)
		}
		return
	}

	c.JSON(http.StatusOK, newRecipeListResponse(recipes, *owner))
}

// CreateRecipe handles POST /recipes.
func (h *Handler) CreateRecipe(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req recipeRequest
	if err := bindBody(c, &req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid recipe request")
		_ = c.Error(NewAPIError(http.StatusBadRequest, nil, "No recipe details provided."))
		return
	}

	owner, recipe, err := h.recipes.Create(ctx, middleware.CallerFrom(c).UserID, req.input())
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			span.SetAttributes(attribute.Bool("request.valid", false))
			_ = c.Error(NewAPIError(verr.StatusCode(), nil, verr.Messages...))
		case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "401: Unauthorized"})
		default:
			span.RecordError(err)
			logger.Error().Err(err).Msg("Create recipe failed")
			unprocessable(c)
		}
		return
	}

	logger.Info().Int("user_id", owner.ID).Int("recipe_id", recipe.ID).Msg("Recipe created")
	c.JSON(http.StatusCreated, newRecipeResponse(*recipe, *owner))
}
