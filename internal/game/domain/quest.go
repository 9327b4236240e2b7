package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

var (
	// ErrQuestEmptyName indicates a missing quest name.
	ErrQuestEmptyName = apperrors.New(apperrors.CodeValidation, "quest name is required")
)

// Quest represents a narrative quest with item requirements.
type Quest struct {
	ID            string
	Name          string
	Description   string
	Narrative     string
	DialogueID    string // optional linked dialogue
	RequiredItems []string
	Progress      int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateQuestInput describes the data needed to create a quest.
type CreateQuestInput struct {
	Name          string
	Description   string
	Narrative     string
	RequiredItems []string
}

// CreateQuest creates a new quest with a generated ID and timestamps.
func CreateQuest(input CreateQuestInput, now func() time.Time, idGenerator func() (string, error)) (Quest, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Quest{}, ErrQuestEmptyName
	}

	required := make([]string, 0, len(input.RequiredItems))
	seen := make(map[string]struct{}, len(input.RequiredItems))
	for _, itemType := range input.RequiredItems {
		itemType = strings.TrimSpace(itemType)
		if itemType == "" {
			continue
		}
		if _, dup := seen[itemType]; dup {
			continue
		}
		seen[itemType] = struct{}{}
		required = append(required, itemType)
	}

	questID, err := idGenerator()
	if err != nil {
		return Quest{}, fmt.Errorf("generate quest id: %w", err)
	}

	createdAt := now().UTC()
	return Quest{
		ID:            questID,
		Name:          input.Name,
		Description:   input.Description,
		Narrative:     input.Narrative,
		RequiredItems: required,
		Progress:      0,
		IsActive:      true,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}
