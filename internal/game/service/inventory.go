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

// UpdateItemInput carries an inventory item update; nil fields are unchanged.
type UpdateItemInput struct {
	ItemID   string
	Quantity *int
	Status   *string
}

// AddItem adds an item stack to a character's inventory after verifying the
// character exists.
func (s *Service) AddItem(ctx context.Context, input domain.CreateItemInput) (domain.InventoryItem, error) {
	item, err := domain.CreateItem(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	err = s.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCharacter(ctx, item.CharacterID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "character not found")
			}
			return fmt.Errorf("resolve item owner: %w", err)
		}
		return tx.PutItem(ctx, item)
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

// GetItem returns one inventory item by id.
func (s *Service) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	item, err := s.store.GetItem(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.InventoryItem{}, apperrors.New(apperrors.CodeNotFound, "item not found")
		}
		return domain.InventoryItem{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetInventoryItems returns every item stack a character owns.
func (s *Service) GetInventoryItems(ctx context.Context, characterID string) ([]domain.InventoryItem, error) {
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "character id is required")
	}
	if _, err := s.store.GetCharacter(ctx, characterID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "character not found")
		}
		return nil, fmt.Errorf("get character: %w", err)
	}

	items, err := s.store.ListItemsByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}

// UpdateInventoryItem applies a partial item update. Setting quantity to
// zero removes the stack.
func (s *Service) UpdateInventoryItem(ctx context.Context, input UpdateItemInput) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		item, err = tx.GetItem(ctx, strings.TrimSpace(input.ItemID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "item not found")
			}
			return fmt.Errorf("get item: %w", err)
		}

		if input.Quantity != nil {
			if *input.Quantity < 0 {
				return domain.ErrItemInvalidQuantity
			}
			if *input.Quantity == 0 {
				item.Quantity = 0
				return tx.DeleteItem(ctx, item.ID)
			}
			item.Quantity = *input.Quantity
		}
		if input.Status != nil {
			status, err := domain.ParseItemStatus(*input.Status)
			if err != nil {
				return err
			}
			item.Status = status
		}
		item.UpdatedAt = s.clock().UTC()

		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

// RemoveItem deletes one item stack.
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	if err := s.store.DeleteItem(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "item not found")
		}
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}
