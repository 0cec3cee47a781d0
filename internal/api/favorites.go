package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/plateful/plateful/internal/model"
)

// ListFavorites fetches the caller's full favorites collection.
func (c *Client) ListFavorites(ctx context.Context) ([]model.FavoriteRecipe, error) {
	var out []model.FavoriteRecipe
	if err := c.doJSON(ctx, http.MethodGet, "favorites", nil, &out); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

// CreateFavorite saves a recipe server-side and returns the server's record.
// The returned record, not the submitted one, is what belongs in the local
// mirror — the backend may normalize fields or assign identity.
func (c *Client) CreateFavorite(ctx context.Context, recipe model.FavoriteRecipe) (*model.FavoriteRecipe, error) {
	var out model.FavoriteRecipe
	if err := c.doJSON(ctx, http.MethodPost, "favorites", recipe, &out); err != nil {
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return &out, nil
}

// UpdateFavorite applies a partial update to a saved recipe.
func (c *Client) UpdateFavorite(ctx context.Context, recipeID string, patch model.RecipePatch) error {
	if recipeID == "" {
		return fmt.Errorf("update favorite: missing recipe id")
	}
	path := "favorites/" + url.PathEscape(recipeID)
	if err := c.doJSON(ctx, http.MethodPatch, path, patch, nil); err != nil {
		return fmt.Errorf("update favorite %s: %w", recipeID, err)
	}
	return nil
}

// DeleteFavorite removes a saved recipe.
func (c *Client) DeleteFavorite(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return fmt.Errorf("delete favorite: missing recipe id")
	}
	path := "favorites/" + url.PathEscape(recipeID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete favorite %s: %w", recipeID, err)
	}
	return nil
}
