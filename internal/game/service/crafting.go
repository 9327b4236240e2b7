package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// CraftItem consumes the submitted item stacks and produces the recipe
// result in one transaction. The submitted item types must be exactly a
// recipe's ingredient types; quantities may exceed the requirement, in
// which case only the required quantity is consumed and surplus stacks are
// decremented (deleted at zero). Crafting is not idempotent; a retried
// request re-runs against whatever inventory remains.
func (s *Service) CraftItem(ctx context.Context, itemIDs []string) (domain.InventoryItem, error) {
	ids := make([]string, 0, len(itemIDs))
	seen := make(map[string]struct{}, len(itemIDs))
	for _, itemID := range itemIDs {
		itemID = strings.TrimSpace(itemID)
		if itemID == "" {
			continue
		}
		if _, dup := seen[itemID]; dup {
			return domain.InventoryItem{}, apperrors.WithMetadata(apperrors.CodeValidation, "duplicate item in crafting request", map[string]string{
				"item_id": itemID,
			})
		}
		seen[itemID] = struct{}{}
		ids = append(ids, itemID)
	}
	if len(ids) == 0 {
		return domain.InventoryItem{}, apperrors.New(apperrors.CodeValidation, "at least one item is required")
	}

	var crafted domain.InventoryItem
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		items := make([]domain.InventoryItem, 0, len(ids))
		for _, itemID := range ids {
			item, err := tx.GetItem(ctx, itemID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return apperrors.WithMetadata(apperrors.CodeNotFound, "crafting item not found", map[string]string{
						"item_id": itemID,
					})
				}
				return fmt.Errorf("resolve crafting item: %w", err)
			}
			items = append(items, item)
		}

		ownerID := items[0].CharacterID
		for _, item := range items[1:] {
			if item.CharacterID != ownerID {
				return apperrors.WithMetadata(apperrors.CodeOwnershipMismatch, "crafting items span multiple owners", map[string]string{
					"item_id": item.ID,
				})
			}
		}

		quantities := make(map[string]int, len(items))
		for _, item := range items {
			quantities[item.ItemType] += item.Quantity
		}

		recipes, err := tx.ListRecipes(ctx)
		if err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}
		recipe, err := matchRecipe(recipes, quantities)
		if err != nil {
			return err
		}

		needed := make(map[string]int, len(recipe.Ingredients))
		for itemType, required := range recipe.Ingredients {
			needed[itemType] = required
		}
		for _, item := range items {
			remaining := needed[item.ItemType]
			if remaining == 0 {
				continue
			}
			if item.Quantity <= remaining {
				if err := tx.DeleteItem(ctx, item.ID); err != nil {
					return fmt.Errorf("consume crafting item: %w", err)
				}
				needed[item.ItemType] = remaining - item.Quantity
				continue
			}
			item.Quantity -= remaining
			item.UpdatedAt = s.clock().UTC()
			if err := tx.UpdateItem(ctx, item); err != nil {
				return fmt.Errorf("decrement crafting item: %w", err)
			}
			needed[item.ItemType] = 0
		}

		crafted, err = domain.CreateItem(domain.CreateItemInput{
			CharacterID: ownerID,
			ItemType:    recipe.ResultItemType,
			Name:        recipe.ResultItemName,
			Quantity:    1,
			Description: recipe.ResultDescription,
		}, s.clock, s.idGenerator)
		if err != nil {
			return fmt.Errorf("create crafted item: %w", err)
		}
		return tx.PutItem(ctx, crafted)
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return crafted, nil
}

// ListRecipes returns the read-only crafting catalog.
func (s *Service) ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error) {
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// matchRecipe finds the recipe the aggregated quantities satisfy. A recipe
// whose ingredient types are all present but with insufficient quantity, or
// drowned in extra types, signals a wrong composition; no type coverage at
// all means nothing craftable was submitted.
func matchRecipe(recipes []domain.CraftingRecipe, quantities map[string]int) (domain.CraftingRecipe, error) {
	for _, recipe := range recipes {
		if recipe.Matches(quantities) {
			return recipe, nil
		}
	}
	for _, recipe := range recipes {
		if recipe.CoversTypes(quantities) {
			return domain.CraftingRecipe{}, apperrors.WithMetadata(apperrors.CodeValidation, "submitted items do not match recipe quantities", map[string]string{
				"recipe_id": recipe.ID,
			})
		}
	}
	return domain.CraftingRecipe{}, apperrors.New(apperrors.CodeNoMatchingRecipe, "no recipe matches the submitted items")
}
