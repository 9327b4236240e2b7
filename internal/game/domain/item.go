package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

// ItemStatus describes whether an item participates in active gameplay.
type ItemStatus string

const (
	// ItemStatusActive indicates the item is usable.
	ItemStatusActive ItemStatus = "ACTIVE"
	// ItemStatusInactive indicates the item is held but not usable.
	ItemStatusInactive ItemStatus = "INACTIVE"
)

var (
	// ErrItemEmptyOwner indicates a missing owning character reference.
	ErrItemEmptyOwner = apperrors.New(apperrors.CodeValidation, "owning character id is required")
	// ErrItemEmptyType indicates a missing item type.
	ErrItemEmptyType = apperrors.New(apperrors.CodeValidation, "item type is required")
	// ErrItemEmptyName indicates a missing item name.
	ErrItemEmptyName = apperrors.New(apperrors.CodeValidation, "item name is required")
	// ErrItemInvalidQuantity indicates a non-positive quantity.
	ErrItemInvalidQuantity = apperrors.New(apperrors.CodeValidation, "item quantity must be greater than zero")
	// ErrItemInvalidStatus indicates an unrecognized status value.
	ErrItemInvalidStatus = apperrors.New(apperrors.CodeValidation, "item status is invalid")
)

// InventoryItem represents an item stack owned by exactly one character.
// Ownership transfer is an explicit operation, never implicit.
type InventoryItem struct {
	ID          string
	CharacterID string
	ItemType    string
	Name        string
	Quantity    int
	Status      ItemStatus
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateItemInput describes the data needed to add an inventory item.
type CreateItemInput struct {
	CharacterID string
	ItemType    string
	Name        string
	Quantity    int
	Description string
}

// CreateItem creates a new inventory item stack with a generated ID.
func CreateItem(input CreateItemInput, now func() time.Time, idGenerator func() (string, error)) (InventoryItem, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.CharacterID = strings.TrimSpace(input.CharacterID)
	if input.CharacterID == "" {
		return InventoryItem{}, ErrItemEmptyOwner
	}
	input.ItemType = strings.TrimSpace(input.ItemType)
	if input.ItemType == "" {
		return InventoryItem{}, ErrItemEmptyType
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return InventoryItem{}, ErrItemEmptyName
	}
	if input.Quantity <= 0 {
		return InventoryItem{}, ErrItemInvalidQuantity
	}

	itemID, err := idGenerator()
	if err != nil {
		return InventoryItem{}, fmt.Errorf("generate item id: %w", err)
	}

	createdAt := now().UTC()
	return InventoryItem{
		ID:          itemID,
		CharacterID: input.CharacterID,
		ItemType:    input.ItemType,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Status:      ItemStatusActive,
		Description: input.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// ParseItemStatus validates a status string.
func ParseItemStatus(value string) (ItemStatus, error) {
	switch ItemStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case ItemStatusActive:
		return ItemStatusActive, nil
	case ItemStatusInactive:
		return ItemStatusInactive, nil
	default:
		return "", ErrItemInvalidStatus
	}
}
