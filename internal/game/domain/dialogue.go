package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

var (
	// ErrDialogueEmptyCharacter indicates a missing speaking character.
	ErrDialogueEmptyCharacter = apperrors.New(apperrors.CodeValidation, "dialogue character id is required")
	// ErrDialogueEmptyContent indicates a missing dialogue script.
	ErrDialogueEmptyContent = apperrors.New(apperrors.CodeValidation, "dialogue content is required")
)

// Dialogue represents a narrative dialogue script tied to a character,
// optionally linked to a quest and a puzzle for trigger propagation.
type Dialogue struct {
	ID          string
	CharacterID string
	Content     string
	QuestID     string // optional linked quest
	PuzzleID    string // optional linked puzzle
	Unlocked    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateDialogueInput describes the data needed to create a dialogue.
type CreateDialogueInput struct {
	CharacterID string
	Content     string
	QuestID     string
	PuzzleID    string
}

// CreateDialogue creates a new dialogue with a generated ID and timestamps.
func CreateDialogue(input CreateDialogueInput, now func() time.Time, idGenerator func() (string, error)) (Dialogue, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.CharacterID = strings.TrimSpace(input.CharacterID)
	if input.CharacterID == "" {
		return Dialogue{}, ErrDialogueEmptyCharacter
	}
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return Dialogue{}, ErrDialogueEmptyContent
	}

	dialogueID, err := idGenerator()
	if err != nil {
		return Dialogue{}, fmt.Errorf("generate dialogue id: %w", err)
	}

	createdAt := now().UTC()
	return Dialogue{
		ID:          dialogueID,
		CharacterID: input.CharacterID,
		Content:     input.Content,
		QuestID:     strings.TrimSpace(input.QuestID),
		PuzzleID:    strings.TrimSpace(input.PuzzleID),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
