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

// ListDialoguesInput bounds a dialogue listing.
type ListDialoguesInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// ListDialoguesResult is one page of dialogues.
type ListDialoguesResult struct {
	Dialogues     []domain.Dialogue
	NextPageToken string
}

// UpdateDialogueInput carries a dialogue update; nil fields are unchanged.
type UpdateDialogueInput struct {
	DialogueID  string
	CharacterID *string
	Content     *string
	QuestID     *string
	PuzzleID    *string
}

// CreateDialogue registers a new dialogue after verifying the speaking
// character and any linked quest or puzzle exist.
func (s *Service) CreateDialogue(ctx context.Context, input domain.CreateDialogueInput) (domain.Dialogue, error) {
	dialogue, err := domain.CreateDialogue(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Dialogue{}, err
	}

	err = s.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCharacter(ctx, dialogue.CharacterID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "character not found")
			}
			return fmt.Errorf("resolve dialogue character: %w", err)
		}
		if err := s.verifyDialogueLinks(ctx, tx, dialogue.QuestID, dialogue.PuzzleID); err != nil {
			return err
		}
		return tx.PutDialogue(ctx, dialogue)
	})
	if err != nil {
		return domain.Dialogue{}, err
	}
	return dialogue, nil
}

// GetDialogue returns one dialogue by id.
func (s *Service) GetDialogue(ctx context.Context, id string) (domain.Dialogue, error) {
	dialogue, err := s.store.GetDialogue(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Dialogue{}, apperrors.New(apperrors.CodeNotFound, "dialogue not found")
		}
		return domain.Dialogue{}, fmt.Errorf("get dialogue: %w", err)
	}
	return dialogue, nil
}

// ListDialogues returns one filtered page of dialogues.
func (s *Service) ListDialogues(ctx context.Context, input ListDialoguesInput) (ListDialoguesResult, error) {
	mapping, err := filter.DialogueMapping()
	if err != nil {
		return ListDialoguesResult{}, fmt.Errorf("dialogue filter mapping: %w", err)
	}
	condition, err := filter.Parse(input.Filter, mapping)
	if err != nil {
		return ListDialoguesResult{}, apperrors.Wrap(apperrors.CodeValidation, "invalid dialogue filter", err)
	}

	page, err := s.store.ListDialogues(ctx, storage.ListQuery{
		WhereClause: condition.Clause,
		WhereParams: condition.Params,
		PageSize:    clampPageSize(input.PageSize),
		PageToken:   input.PageToken,
	})
	if err != nil {
		return ListDialoguesResult{}, fmt.Errorf("list dialogues: %w", err)
	}
	return ListDialoguesResult{
		Dialogues:     page.Dialogues,
		NextPageToken: page.NextPageToken,
	}, nil
}

// UpdateDialogue applies a partial dialogue update.
func (s *Service) UpdateDialogue(ctx context.Context, input UpdateDialogueInput) (domain.Dialogue, error) {
	var dialogue domain.Dialogue
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		dialogue, err = tx.GetDialogue(ctx, strings.TrimSpace(input.DialogueID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "dialogue not found")
			}
			return fmt.Errorf("get dialogue: %w", err)
		}

		if input.CharacterID != nil {
			characterID := strings.TrimSpace(*input.CharacterID)
			if characterID == "" {
				return domain.ErrDialogueEmptyCharacter
			}
			if _, err := tx.GetCharacter(ctx, characterID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return apperrors.New(apperrors.CodeNotFound, "character not found")
				}
				return fmt.Errorf("resolve dialogue character: %w", err)
			}
			dialogue.CharacterID = characterID
		}
		if input.Content != nil {
			content := strings.TrimSpace(*input.Content)
			if content == "" {
				return domain.ErrDialogueEmptyContent
			}
			dialogue.Content = content
		}
		if input.QuestID != nil {
			dialogue.QuestID = strings.TrimSpace(*input.QuestID)
		}
		if input.PuzzleID != nil {
			dialogue.PuzzleID = strings.TrimSpace(*input.PuzzleID)
		}
		if err := s.verifyDialogueLinks(ctx, tx, dialogue.QuestID, dialogue.PuzzleID); err != nil {
			return err
		}
		dialogue.UpdatedAt = s.clock().UTC()

		return tx.UpdateDialogue(ctx, dialogue)
	})
	if err != nil {
		return domain.Dialogue{}, err
	}
	return dialogue, nil
}

func (s *Service) verifyDialogueLinks(ctx context.Context, tx storage.Tx, questID, puzzleID string) error {
	if questID != "" {
		if _, err := tx.GetQuest(ctx, questID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WithMetadata(apperrors.CodeValidation, "linked quest does not exist", map[string]string{
					"quest_id": questID,
				})
			}
			return fmt.Errorf("resolve linked quest: %w", err)
		}
	}
	if puzzleID != "" {
		if _, err := tx.GetPuzzle(ctx, puzzleID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WithMetadata(apperrors.CodeValidation, "linked puzzle does not exist", map[string]string{
					"puzzle_id": puzzleID,
				})
			}
			return fmt.Errorf("resolve linked puzzle: %w", err)
		}
	}
	return nil
}
