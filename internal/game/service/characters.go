package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/filter"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// ListCharactersInput bounds a character listing.
type ListCharactersInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// ListCharactersResult is one page of characters.
type ListCharactersResult struct {
	Characters    []domain.Character
	NextPageToken string
}

// UpdateCharacterInput carries a character update; nil fields are unchanged.
type UpdateCharacterInput struct {
	CharacterID       string
	Name              *string
	Appearance        *string
	CustomizationJSON *string
}

// CreateCharacter registers a new character.
func (s *Service) CreateCharacter(ctx context.Context, input domain.CreateCharacterInput) (domain.Character, error) {
	character, err := domain.CreateCharacter(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Character{}, err
	}
	if err := s.store.PutCharacter(ctx, character); err != nil {
		return domain.Character{}, fmt.Errorf("persist character: %w", err)
	}
	return character, nil
}

// GetCharacter returns one character by id.
func (s *Service) GetCharacter(ctx context.Context, id string) (domain.Character, error) {
	character, err := s.store.GetCharacter(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Character{}, apperrors.New(apperrors.CodeNotFound, "character not found")
		}
		return domain.Character{}, fmt.Errorf("get character: %w", err)
	}
	return character, nil
}

// ListCharacters returns one filtered page of characters.
func (s *Service) ListCharacters(ctx context.Context, input ListCharactersInput) (ListCharactersResult, error) {
	mapping, err := filter.CharacterMapping()
	if err != nil {
		return ListCharactersResult{}, fmt.Errorf("character filter mapping: %w", err)
	}
	condition, err := filter.Parse(input.Filter, mapping)
	if err != nil {
		return ListCharactersResult{}, apperrors.Wrap(apperrors.CodeValidation, "invalid character filter", err)
	}

	page, err := s.store.ListCharacters(ctx, storage.ListQuery{
		WhereClause: condition.Clause,
		WhereParams: condition.Params,
		PageSize:    clampPageSize(input.PageSize),
		PageToken:   input.PageToken,
	})
	if err != nil {
		return ListCharactersResult{}, fmt.Errorf("list characters: %w", err)
	}
	return ListCharactersResult{
		Characters:    page.Characters,
		NextPageToken: page.NextPageToken,
	}, nil
}

// UpdateCharacter applies a partial character update.
func (s *Service) UpdateCharacter(ctx context.Context, input UpdateCharacterInput) (domain.Character, error) {
	var character domain.Character
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		character, err = tx.GetCharacter(ctx, strings.TrimSpace(input.CharacterID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "character not found")
			}
			return fmt.Errorf("get character: %w", err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return domain.ErrCharacterEmptyName
			}
			character.Name = name
		}
		if input.Appearance != nil {
			character.Appearance = *input.Appearance
		}
		if input.CustomizationJSON != nil {
			character.CustomizationJSON = *input.CustomizationJSON
		}
		character.UpdatedAt = s.clock().UTC()

		return tx.UpdateCharacter(ctx, character)
	})
	if err != nil {
		return domain.Character{}, err
	}
	return character, nil
}
