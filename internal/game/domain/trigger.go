package domain

import (
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// TriggerKind identifies a gameplay trigger event.
type TriggerKind string

const (
	// TriggerPuzzleCompleted fires when a puzzle is marked completed.
	TriggerPuzzleCompleted TriggerKind = "PUZZLE_COMPLETED"
	// TriggerDialogueTriggered fires when a dialogue event is invoked.
	TriggerDialogueTriggered TriggerKind = "DIALOGUE_TRIGGERED"
	// TriggerDialogueDeleted fires when a dialogue is removed.
	TriggerDialogueDeleted TriggerKind = "DIALOGUE_DELETED"
	// TriggerQuestDeleted fires when a quest is removed.
	TriggerQuestDeleted TriggerKind = "QUEST_DELETED"
	// TriggerPuzzleDeleted fires when a puzzle is removed.
	TriggerPuzzleDeleted TriggerKind = "PUZZLE_DELETED"
	// TriggerCharacterDeleted fires when a character is removed.
	TriggerCharacterDeleted TriggerKind = "CHARACTER_DELETED"
)

var (
	// ErrTriggerEmptySource indicates a missing source entity reference.
	ErrTriggerEmptySource = apperrors.New(apperrors.CodeValidation, "trigger source id is required")
	// ErrTriggerInvalidKind indicates an unrecognized trigger kind.
	ErrTriggerInvalidKind = apperrors.New(apperrors.CodeValidation, "trigger kind is invalid")
)

// TriggerEvent is a discrete gameplay trigger. Kind plus SourceID form the
// idempotency key: downstream effects apply at most once per key even when
// the triggering request is retried.
type TriggerEvent struct {
	Kind     TriggerKind
	SourceID string
}

// NewTriggerEvent validates and builds a trigger event.
func NewTriggerEvent(kind TriggerKind, sourceID string) (TriggerEvent, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return TriggerEvent{}, ErrTriggerEmptySource
	}
	switch kind {
	case TriggerPuzzleCompleted, TriggerDialogueTriggered,
		TriggerDialogueDeleted, TriggerQuestDeleted, TriggerPuzzleDeleted,
		TriggerCharacterDeleted:
	default:
		return TriggerEvent{}, ErrTriggerInvalidKind
	}
	return TriggerEvent{Kind: kind, SourceID: sourceID}, nil
}

// AppliedEffect records a single downstream mutation applied by a dispatch.
type AppliedEffect struct {
	Module   string `json:"module"`
	EntityID string `json:"entity_id"`
	Action   string `json:"action"`
}

// EffectsApplied is the recorded result of one trigger dispatch. Replayed
// dispatches return this record unchanged instead of re-executing effects.
type EffectsApplied struct {
	Kind      TriggerKind     `json:"kind"`
	SourceID  string          `json:"source_id"`
	Effects   []AppliedEffect `json:"effects"`
	AppliedAt time.Time       `json:"applied_at"`
	Replayed  bool            `json:"replayed,omitempty"`
}
