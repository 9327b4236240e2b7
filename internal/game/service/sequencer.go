package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// ApplyUpdateResult reports one accepted state update batch: the version the
// session advanced to, the participants to broadcast to, and the deltas as
// applied.
type ApplyUpdateResult struct {
	SessionID    string
	NewVersion   uint64
	Participants []string
	Applied      domain.StateUpdateBatch
}

// ApplyUpdate serializes one state update batch against a session. The batch
// is fenced on the version it was computed against: a mismatch rejects the
// whole batch with a conflict carrying expected vs actual, and the caller
// must re-read before retrying. Accepted batches apply character changes,
// then inventory updates, then quest updates, and advance the version by
// exactly 1. Deltas are applied verbatim; there is no merging.
func (s *Service) ApplyUpdate(ctx context.Context, batch domain.StateUpdateBatch) (ApplyUpdateResult, error) {
	batch.SessionID = strings.TrimSpace(batch.SessionID)
	if batch.SessionID == "" {
		return ApplyUpdateResult{}, apperrors.New(apperrors.CodeValidation, "session id is required")
	}

	var result ApplyUpdateResult
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		session, err := tx.GetSession(ctx, batch.SessionID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "session not found")
			}
			return fmt.Errorf("get session: %w", err)
		}
		if !session.IsActive {
			return domain.ErrSessionInactive
		}
		if batch.ExpectedVersion != session.Version {
			return apperrors.WithMetadata(apperrors.CodeConflict, "session version mismatch", map[string]string{
				"expected_version": strconv.FormatUint(batch.ExpectedVersion, 10),
				"actual_version":   strconv.FormatUint(session.Version, 10),
			})
		}

		now := s.clock().UTC()
		if err := s.applyCharacterChanges(ctx, tx, batch.CharacterChanges, now); err != nil {
			return err
		}
		if err := s.applyInventoryUpdates(ctx, tx, batch.InventoryUpdates, now); err != nil {
			return err
		}
		if err := s.applyQuestUpdates(ctx, tx, batch.QuestUpdates, now); err != nil {
			return err
		}

		session.Version++
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return fmt.Errorf("advance session version: %w", err)
		}

		result = ApplyUpdateResult{
			SessionID:    session.ID,
			NewVersion:   session.Version,
			Participants: session.Participants,
			Applied:      batch,
		}
		return nil
	})
	if err != nil {
		return ApplyUpdateResult{}, err
	}
	return result, nil
}

func (s *Service) applyCharacterChanges(ctx context.Context, tx storage.Tx, changes []domain.CharacterUpdate, now time.Time) error {
	for _, change := range changes {
		character, err := tx.GetCharacter(ctx, change.CharacterID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WithMetadata(apperrors.CodeValidation, "character change references unknown character", map[string]string{
					"character_id": change.CharacterID,
				})
			}
			return fmt.Errorf("resolve character change: %w", err)
		}
		if change.Appearance != "" {
			character.Appearance = change.Appearance
		}
		if change.CustomizationJSON != "" {
			character.CustomizationJSON = change.CustomizationJSON
		}
		character.UpdatedAt = now
		if err := tx.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("apply character change: %w", err)
		}
	}
	return nil
}

func (s *Service) applyInventoryUpdates(ctx context.Context, tx storage.Tx, updates []domain.InventoryUpdate, now time.Time) error {
	for _, update := range updates {
		item, err := tx.GetItem(ctx, update.ItemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WithMetadata(apperrors.CodeValidation, "inventory update references unknown item", map[string]string{
					"item_id": update.ItemID,
				})
			}
			return fmt.Errorf("resolve inventory update: %w", err)
		}

		quantity := item.Quantity + update.QuantityDelta
		if quantity < 0 {
			return apperrors.WithMetadata(apperrors.CodeValidation, "inventory update drops quantity below zero", map[string]string{
				"item_id": update.ItemID,
			})
		}
		if quantity == 0 {
			if err := tx.DeleteItem(ctx, item.ID); err != nil {
				return fmt.Errorf("remove exhausted stack: %w", err)
			}
			continue
		}

		item.Quantity = quantity
		if update.Status != "" {
			status, err := domain.ParseItemStatus(update.Status)
			if err != nil {
				return apperrors.WithMetadata(apperrors.CodeValidation, "inventory update carries invalid status", map[string]string{
					"item_id": update.ItemID,
				})
			}
			item.Status = status
		}
		item.UpdatedAt = now
		if err := tx.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("apply inventory update: %w", err)
		}
	}
	return nil
}

func (s *Service) applyQuestUpdates(ctx context.Context, tx storage.Tx, updates []domain.QuestUpdate, now time.Time) error {
	for _, update := range updates {
		quest, err := tx.GetQuest(ctx, update.QuestID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WithMetadata(apperrors.CodeValidation, "quest update references unknown quest", map[string]string{
					"quest_id": update.QuestID,
				})
			}
			return fmt.Errorf("resolve quest update: %w", err)
		}

		progress := quest.Progress + update.ProgressDelta
		if progress < 0 {
			return apperrors.WithMetadata(apperrors.CodeValidation, "quest update drops progress below zero", map[string]string{
				"quest_id": update.QuestID,
			})
		}
		quest.Progress = progress
		if update.IsActive != nil {
			quest.IsActive = *update.IsActive
		}
		quest.UpdatedAt = now
		if err := tx.UpdateQuest(ctx, quest); err != nil {
			return fmt.Errorf("apply quest update: %w", err)
		}
	}
	return nil
}
