package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
)

// PutRecipe inserts one crafting recipe with its ingredient requirements.
func (c *conn) PutRecipe(ctx context.Context, recipe domain.CraftingRecipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(recipe.ID) == "" {
		return fmt.Errorf("recipe id is required")
	}
	if len(recipe.Ingredients) == 0 {
		return fmt.Errorf("recipe ingredients are required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO crafting_recipes (id, name, result_item_type, result_item_name, result_description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		recipe.ID,
		recipe.Name,
		recipe.ResultItemType,
		recipe.ResultItemName,
		recipe.ResultDescription,
		toMillis(recipe.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put recipe: %w", err)
	}

	for itemType, quantity := range recipe.Ingredients {
		if _, err := c.db.ExecContext(
			ctx,
			`INSERT INTO recipe_ingredients (recipe_id, item_type, quantity) VALUES (?, ?, ?)`,
			recipe.ID,
			itemType,
			quantity,
		); err != nil {
			return fmt.Errorf("put recipe ingredients: %w", err)
		}
	}
	return nil
}

// ListRecipes returns the full recipe catalog with ingredients attached.
func (c *conn) ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT id, name, result_item_type, result_item_name, result_description, created_at
		   FROM crafting_recipes
		  ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.CraftingRecipe
	index := make(map[string]int)
	for rows.Next() {
		var recipe domain.CraftingRecipe
		var createdAt int64
		if err := rows.Scan(
			&recipe.ID,
			&recipe.Name,
			&recipe.ResultItemType,
			&recipe.ResultItemName,
			&recipe.ResultDescription,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list recipes: %w", err)
		}
		recipe.CreatedAt = fromMillis(createdAt)
		recipe.Ingredients = make(map[string]int)
		index[recipe.ID] = len(recipes)
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	ingredientRows, err := c.db.QueryContext(
		ctx,
		`SELECT recipe_id, item_type, quantity FROM recipe_ingredients`,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer ingredientRows.Close()

	for ingredientRows.Next() {
		var recipeID, itemType string
		var quantity int
		if err := ingredientRows.Scan(&recipeID, &itemType, &quantity); err != nil {
			return nil, fmt.Errorf("list recipe ingredients: %w", err)
		}
		if i, ok := index[recipeID]; ok {
			recipes[i].Ingredients[itemType] = quantity
		}
	}
	if err := ingredientRows.Err(); err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	return recipes, nil
}
