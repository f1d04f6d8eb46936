package v1

import "github.com/duynhne/recipe-service/internal/core/domain"

// UserResponse is the public projection of a user. It has no credential field.
type UserResponse struct {
	ID       int                  `json:"id"`
	Username string               `json:"username"`
	ImageURL *string              `json:"image_url"`
	Bio      *string              `json:"bio"`
	Recipes  []UserRecipeResponse `json:"recipes"`
}

// UserRecipeResponse is a recipe nested in a UserResponse, without a link back to the user.
type UserRecipeResponse struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete int    `json:"minutes_to_complete"`
}

// UserSummaryResponse is the owner nested in a RecipeResponse, without recipes.
type UserSummaryResponse struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	ImageURL *string `json:"image_url"`
	Bio      *string `json:"bio"`
}

// RecipeResponse is the public projection of a recipe. ID and user_id are omitted.
type RecipeResponse struct {
	Title             string              `json:"title"`
	Instructions      string              `json:"instructions"`
	MinutesToComplete int                 `json:"minutes_to_complete"`
	User              UserSummaryResponse `json:"user"`
}

func newUserResponse(p *domain.UserProfile) UserResponse {
	recipes := make([]UserRecipeResponse, 0, len(p.Recipes))
	for _, r := range p.Recipes {
		recipes = append(recipes, UserRecipeResponse{
			ID:                r.ID,
			Title:             r.Title,
			Instructions:      r.Instructions,
			MinutesToComplete: r.MinutesToComplete,
		})
	}

	return UserResponse{
		ID:       p.User.ID,
		Username: p.User.Username,
		ImageURL: p.User.ImageURL,
		Bio:      p.User.Bio,
		Recipes:  recipes,
	}
}

func newUserSummaryResponse(u domain.User) UserSummaryResponse {
	return UserSummaryResponse{
		ID:       u.ID,
		Username: u.Username,
		ImageURL: u.ImageURL,
		Bio:      u.Bio,
	}
}

func newRecipeResponse(r domain.Recipe, owner domain.User) RecipeResponse {
	return RecipeResponse{
		Title:             r.Title,
		Instructions:      r.Instructions,
		MinutesToComplete: r.MinutesToComplete,
		User:              newUserSummaryResponse(owner),
	}
}

func newRecipeListResponse(recipes []domain.Recipe, owner domain.User) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, newRecipeResponse(r, owner))
	}
	return out
}
