package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// effectFunc applies the downstream mutations for one trigger. Effects run
// inside the same transaction that records the ledger row, so a failing
// effect rolls back the whole dispatch, triggering mutation included.
type effectFunc func(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error)

// dispatchTable is the static propagation graph: trigger kind to ordered
// effect list. Reachability is fixed at compile time; there are no dynamic
// subscriptions.
func (s *Service) dispatchTable() map[domain.TriggerKind][]effectFunc {
	return map[domain.TriggerKind][]effectFunc{
		domain.TriggerPuzzleCompleted:   {s.advanceQuestForPuzzle, s.unlockDialoguesForPuzzle},
		domain.TriggerDialogueTriggered: {s.advanceQuestForDialogue, s.unlockPuzzlesForDialogue},
		domain.TriggerDialogueDeleted:   {s.clearDialogueReferences},
		domain.TriggerQuestDeleted:      {s.clearQuestReferences},
		domain.TriggerPuzzleDeleted:     {s.clearPuzzleReferences},
		domain.TriggerCharacterDeleted:  {s.cleanupCharacterInventory, s.cleanupCharacterSessions},
	}
}

// Dispatch runs one trigger through the propagation graph in its own
// transaction. The (kind, source) pair is the idempotency key: a replayed
// trigger returns the recorded result without re-executing effects.
func (s *Service) Dispatch(ctx context.Context, event domain.TriggerEvent) (domain.EffectsApplied, error) {
	var result domain.EffectsApplied
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		result, err = s.dispatchInTx(ctx, tx, event)
		return err
	})
	if err != nil {
		return domain.EffectsApplied{}, err
	}
	return result, nil
}

func (s *Service) dispatchInTx(ctx context.Context, tx storage.Tx, event domain.TriggerEvent) (domain.EffectsApplied, error) {
	event, err := domain.NewTriggerEvent(event.Kind, event.SourceID)
	if err != nil {
		return domain.EffectsApplied{}, err
	}

	record, err := tx.GetTriggerRecord(ctx, event.Kind, event.SourceID)
	if err == nil {
		return replayedResult(record)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.EffectsApplied{}, fmt.Errorf("check trigger ledger: %w", err)
	}

	now := s.clock().UTC()
	result := domain.EffectsApplied{
		Kind:      event.Kind,
		SourceID:  event.SourceID,
		Effects:   []domain.AppliedEffect{},
		AppliedAt: now,
	}
	for _, effect := range s.dispatchTable()[event.Kind] {
		applied, err := effect(ctx, tx, event.SourceID, now)
		if err != nil {
			if apperrors.GetCode(err) == apperrors.CodeValidation {
				return domain.EffectsApplied{}, apperrors.Wrap(apperrors.CodePropagation, "trigger effect rejected", err)
			}
			return domain.EffectsApplied{}, err
		}
		result.Effects = append(result.Effects, applied...)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return domain.EffectsApplied{}, fmt.Errorf("encode trigger result: %w", err)
	}
	err = tx.PutTriggerRecord(ctx, storage.TriggerRecord{
		Kind:       event.Kind,
		SourceID:   event.SourceID,
		ResultJSON: string(resultJSON),
		AppliedAt:  now,
	})
	if err != nil {
		// A concurrent dispatch won the key; honor its recorded result.
		if errors.Is(err, storage.ErrAlreadyExists) {
			record, getErr := tx.GetTriggerRecord(ctx, event.Kind, event.SourceID)
			if getErr != nil {
				return domain.EffectsApplied{}, fmt.Errorf("read trigger ledger: %w", getErr)
			}
			return replayedResult(record)
		}
		return domain.EffectsApplied{}, fmt.Errorf("record trigger: %w", err)
	}
	return result, nil
}

func replayedResult(record storage.TriggerRecord) (domain.EffectsApplied, error) {
	var result domain.EffectsApplied
	if err := json.Unmarshal([]byte(record.ResultJSON), &result); err != nil {
		return domain.EffectsApplied{}, fmt.Errorf("decode trigger result: %w", err)
	}
	result.Replayed = true
	return result, nil
}

// MarkPuzzleCompleted marks a puzzle solved and propagates the completion in
// one transaction. Completing an already-completed puzzle replays the
// recorded result as a success no-op.
func (s *Service) MarkPuzzleCompleted(ctx context.Context, puzzleID string) (domain.EffectsApplied, error) {
	var result domain.EffectsApplied
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		puzzle, err := tx.GetPuzzle(ctx, strings.TrimSpace(puzzleID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "puzzle not found")
			}
			return fmt.Errorf("get puzzle: %w", err)
		}

		if !puzzle.Completed {
			puzzle.Completed = true
			puzzle.UpdatedAt = s.clock().UTC()
			if err := tx.UpdatePuzzle(ctx, puzzle); err != nil {
				return fmt.Errorf("mark puzzle completed: %w", err)
			}
		}

		result, err = s.dispatchInTx(ctx, tx, domain.TriggerEvent{
			Kind:     domain.TriggerPuzzleCompleted,
			SourceID: puzzle.ID,
		})
		return err
	})
	if err != nil {
		return domain.EffectsApplied{}, err
	}
	return result, nil
}

// TriggerDialogueEvent propagates a dialogue activation in one transaction.
func (s *Service) TriggerDialogueEvent(ctx context.Context, dialogueID string) (domain.EffectsApplied, error) {
	var result domain.EffectsApplied
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		dialogue, err := tx.GetDialogue(ctx, strings.TrimSpace(dialogueID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "dialogue not found")
			}
			return fmt.Errorf("get dialogue: %w", err)
		}

		result, err = s.dispatchInTx(ctx, tx, domain.TriggerEvent{
			Kind:     domain.TriggerDialogueTriggered,
			SourceID: dialogue.ID,
		})
		return err
	})
	if err != nil {
		return domain.EffectsApplied{}, err
	}
	return result, nil
}

// DeleteDialogue removes a dialogue and cleans up every record referencing
// it, atomically with the deletion itself.
func (s *Service) DeleteDialogue(ctx context.Context, id string) error {
	return s.deleteWithPropagation(ctx, domain.TriggerDialogueDeleted, id, "dialogue not found",
		func(ctx context.Context, tx storage.Tx, id string) error {
			if _, err := tx.GetDialogue(ctx, id); err != nil {
				return err
			}
			return nil
		},
		func(ctx context.Context, tx storage.Tx, id string) error {
			return tx.DeleteDialogue(ctx, id)
		},
	)
}

// DeleteQuest removes a quest and clears the links pointing at it.
func (s *Service) DeleteQuest(ctx context.Context, id string) error {
	return s.deleteWithPropagation(ctx, domain.TriggerQuestDeleted, id, "quest not found",
		func(ctx context.Context, tx storage.Tx, id string) error {
			if _, err := tx.GetQuest(ctx, id); err != nil {
				return err
			}
			return nil
		},
		func(ctx context.Context, tx storage.Tx, id string) error {
			return tx.DeleteQuest(ctx, id)
		},
	)
}

// DeletePuzzle removes a puzzle and clears the links pointing at it.
func (s *Service) DeletePuzzle(ctx context.Context, id string) error {
	return s.deleteWithPropagation(ctx, domain.TriggerPuzzleDeleted, id, "puzzle not found",
		func(ctx context.Context, tx storage.Tx, id string) error {
			if _, err := tx.GetPuzzle(ctx, id); err != nil {
				return err
			}
			return nil
		},
		func(ctx context.Context, tx storage.Tx, id string) error {
			return tx.DeletePuzzle(ctx, id)
		},
	)
}

// DeleteCharacter removes a character, its inventory, and its session
// memberships in one transaction.
func (s *Service) DeleteCharacter(ctx context.Context, id string) error {
	return s.deleteWithPropagation(ctx, domain.TriggerCharacterDeleted, id, "character not found",
		func(ctx context.Context, tx storage.Tx, id string) error {
			if _, err := tx.GetCharacter(ctx, id); err != nil {
				return err
			}
			return nil
		},
		func(ctx context.Context, tx storage.Tx, id string) error {
			return tx.DeleteCharacter(ctx, id)
		},
	)
}

func (s *Service) deleteWithPropagation(
	ctx context.Context,
	kind domain.TriggerKind,
	id string,
	notFoundMessage string,
	resolve func(ctx context.Context, tx storage.Tx, id string) error,
	remove func(ctx context.Context, tx storage.Tx, id string) error,
) error {
	id = strings.TrimSpace(id)
	return s.store.WithinTx(ctx, func(tx storage.Tx) error {
		if err := resolve(ctx, tx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, notFoundMessage)
			}
			return fmt.Errorf("resolve %s: %w", strings.ToLower(string(kind)), err)
		}
		// Effects read the graph before the row disappears.
		if _, err := s.dispatchInTx(ctx, tx, domain.TriggerEvent{Kind: kind, SourceID: id}); err != nil {
			return err
		}
		if err := remove(ctx, tx, id); err != nil {
			return fmt.Errorf("delete %s: %w", strings.ToLower(string(kind)), err)
		}
		return nil
	})
}

func (s *Service) advanceQuestForPuzzle(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	puzzle, err := tx.GetPuzzle(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get puzzle: %w", err)
	}
	if puzzle.QuestID == "" {
		return nil, nil
	}
	return s.advanceQuest(ctx, tx, puzzle.QuestID, now)
}

func (s *Service) advanceQuestForDialogue(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	dialogue, err := tx.GetDialogue(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get dialogue: %w", err)
	}
	if dialogue.QuestID == "" {
		return nil, nil
	}
	return s.advanceQuest(ctx, tx, dialogue.QuestID, now)
}

func (s *Service) advanceQuest(ctx context.Context, tx storage.Tx, questID string, now time.Time) ([]domain.AppliedEffect, error) {
	quest, err := tx.GetQuest(ctx, questID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.WithMetadata(apperrors.CodeValidation, "linked quest does not exist", map[string]string{
				"quest_id": questID,
			})
		}
		return nil, fmt.Errorf("get linked quest: %w", err)
	}
	if !quest.IsActive {
		return nil, nil
	}
	quest.Progress++
	quest.UpdatedAt = now
	if err := tx.UpdateQuest(ctx, quest); err != nil {
		return nil, fmt.Errorf("advance linked quest: %w", err)
	}
	return []domain.AppliedEffect{{Module: "quests", EntityID: quest.ID, Action: "progress_advanced"}}, nil
}

func (s *Service) unlockDialoguesForPuzzle(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	puzzle, err := tx.GetPuzzle(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get puzzle: %w", err)
	}

	dialogues, err := tx.ListDialoguesByPuzzle(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list linked dialogues: %w", err)
	}
	if puzzle.DialogueID != "" {
		linked, err := tx.GetDialogue(ctx, puzzle.DialogueID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("get linked dialogue: %w", err)
			}
		} else {
			dialogues = append(dialogues, linked)
		}
	}

	var effects []domain.AppliedEffect
	unlocked := make(map[string]struct{}, len(dialogues))
	for _, dialogue := range dialogues {
		if _, done := unlocked[dialogue.ID]; done || dialogue.Unlocked {
			continue
		}
		unlocked[dialogue.ID] = struct{}{}
		dialogue.Unlocked = true
		dialogue.UpdatedAt = now
		if err := tx.UpdateDialogue(ctx, dialogue); err != nil {
			return nil, fmt.Errorf("unlock linked dialogue: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "dialogues", EntityID: dialogue.ID, Action: "unlocked"})
	}
	return effects, nil
}

func (s *Service) unlockPuzzlesForDialogue(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	dialogue, err := tx.GetDialogue(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get dialogue: %w", err)
	}
	if dialogue.PuzzleID == "" {
		return nil, nil
	}
	puzzle, err := tx.GetPuzzle(ctx, dialogue.PuzzleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.WithMetadata(apperrors.CodeValidation, "linked puzzle does not exist", map[string]string{
				"puzzle_id": dialogue.PuzzleID,
			})
		}
		return nil, fmt.Errorf("get linked puzzle: %w", err)
	}
	if puzzle.Unlocked {
		return nil, nil
	}
	puzzle.Unlocked = true
	puzzle.UpdatedAt = now
	if err := tx.UpdatePuzzle(ctx, puzzle); err != nil {
		return nil, fmt.Errorf("unlock linked puzzle: %w", err)
	}
	return []domain.AppliedEffect{{Module: "puzzles", EntityID: puzzle.ID, Action: "unlocked"}}, nil
}

func (s *Service) clearDialogueReferences(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	var effects []domain.AppliedEffect

	quests, err := tx.ListQuestsByDialogue(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list quests by dialogue: %w", err)
	}
	for _, quest := range quests {
		quest.DialogueID = ""
		quest.UpdatedAt = now
		if err := tx.UpdateQuest(ctx, quest); err != nil {
			return nil, fmt.Errorf("clear quest dialogue link: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "quests", EntityID: quest.ID, Action: "dialogue_link_cleared"})
	}

	puzzles, err := tx.ListPuzzlesByDialogue(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list puzzles by dialogue: %w", err)
	}
	for _, puzzle := range puzzles {
		puzzle.DialogueID = ""
		puzzle.UpdatedAt = now
		if err := tx.UpdatePuzzle(ctx, puzzle); err != nil {
			return nil, fmt.Errorf("clear puzzle dialogue link: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "puzzles", EntityID: puzzle.ID, Action: "dialogue_link_cleared"})
	}
	return effects, nil
}

func (s *Service) clearQuestReferences(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	var effects []domain.AppliedEffect

	dialogues, err := tx.ListDialoguesByQuest(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list dialogues by quest: %w", err)
	}
	for _, dialogue := range dialogues {
		dialogue.QuestID = ""
		dialogue.UpdatedAt = now
		if err := tx.UpdateDialogue(ctx, dialogue); err != nil {
			return nil, fmt.Errorf("clear dialogue quest link: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "dialogues", EntityID: dialogue.ID, Action: "quest_link_cleared"})
	}

	puzzles, err := tx.ListPuzzlesByQuest(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list puzzles by quest: %w", err)
	}
	for _, puzzle := range puzzles {
		puzzle.QuestID = ""
		puzzle.UpdatedAt = now
		if err := tx.UpdatePuzzle(ctx, puzzle); err != nil {
			return nil, fmt.Errorf("clear puzzle quest link: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "puzzles", EntityID: puzzle.ID, Action: "quest_link_cleared"})
	}
	return effects, nil
}

func (s *Service) clearPuzzleReferences(ctx context.Context, tx storage.Tx, sourceID string, now time.Time) ([]domain.AppliedEffect, error) {
	var effects []domain.AppliedEffect

	dialogues, err := tx.ListDialoguesByPuzzle(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list dialogues by puzzle: %w", err)
	}
	for _, dialogue := range dialogues {
		dialogue.PuzzleID = ""
		dialogue.UpdatedAt = now
		if err := tx.UpdateDialogue(ctx, dialogue); err != nil {
			return nil, fmt.Errorf("clear dialogue puzzle link: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "dialogues", EntityID: dialogue.ID, Action: "puzzle_link_cleared"})
	}
	return effects, nil
}

func (s *Service) cleanupCharacterInventory(ctx context.Context, tx storage.Tx, sourceID string, _ time.Time) ([]domain.AppliedEffect, error) {
	items, err := tx.ListItemsByCharacter(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list character items: %w", err)
	}
	var effects []domain.AppliedEffect
	for _, item := range items {
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("delete character item: %w", err)
		}
		effects = append(effects, domain.AppliedEffect{Module: "inventory", EntityID: item.ID, Action: "deleted"})
	}
	return effects, nil
}

func (s *Service) cleanupCharacterSessions(ctx context.Context, tx storage.Tx, sourceID string, _ time.Time) ([]domain.AppliedEffect, error) {
	if err := tx.RemoveParticipant(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("remove session memberships: %w", err)
	}
	return []domain.AppliedEffect{{Module: "sessions", EntityID: sourceID, Action: "membership_removed"}}, nil
}
