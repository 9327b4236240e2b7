package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

var (
	// ErrCharacterEmptyName indicates a missing character name.
	ErrCharacterEmptyName = apperrors.New(apperrors.CodeValidation, "character name is required")
	// ErrCharacterEmptyProfile indicates a missing player profile reference.
	ErrCharacterEmptyProfile = apperrors.New(apperrors.CodeValidation, "player profile id is required")
)

// Character represents a playable character.
type Character struct {
	ID                string
	Name              string
	PlayerProfileID   string
	Appearance        string
	CustomizationJSON string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateCharacterInput describes the data needed to create a character.
type CreateCharacterInput struct {
	Name              string
	PlayerProfileID   string
	CustomizationJSON string
}

// CreateCharacter creates a new character with a generated ID and timestamps.
func CreateCharacter(input CreateCharacterInput, now func() time.Time, idGenerator func() (string, error)) (Character, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Character{}, ErrCharacterEmptyName
	}
	input.PlayerProfileID = strings.TrimSpace(input.PlayerProfileID)
	if input.PlayerProfileID == "" {
		return Character{}, ErrCharacterEmptyProfile
	}

	characterID, err := idGenerator()
	if err != nil {
		return Character{}, fmt.Errorf("generate character id: %w", err)
	}

	createdAt := now().UTC()
	return Character{
		ID:                characterID,
		Name:              input.Name,
		PlayerProfileID:   input.PlayerProfileID,
		CustomizationJSON: input.CustomizationJSON,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}, nil
}
