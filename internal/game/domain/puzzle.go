package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

var (
	// ErrPuzzleEmptyTitle indicates a missing puzzle title.
	ErrPuzzleEmptyTitle = apperrors.New(apperrors.CodeValidation, "puzzle title is required")
	// ErrPuzzleEmptySolution indicates a missing puzzle solution.
	ErrPuzzleEmptySolution = apperrors.New(apperrors.CodeValidation, "puzzle solution is required")
	// ErrPuzzleInvalidComplexity indicates a non-positive complexity level.
	ErrPuzzleInvalidComplexity = apperrors.New(apperrors.CodeValidation, "puzzle complexity must be greater than zero")
)

// Puzzle represents a solvable puzzle, optionally linked to a quest and a
// dialogue for completion propagation.
type Puzzle struct {
	ID          string
	Title       string
	Description string
	Complexity  int
	Solution    string
	Hints       []string
	Completed   bool
	Unlocked    bool
	QuestID     string // optional linked quest
	DialogueID  string // optional linked dialogue
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreatePuzzleInput describes the data needed to create a puzzle.
type CreatePuzzleInput struct {
	Title       string
	Description string
	Complexity  int
	Solution    string
	QuestID     string
	DialogueID  string
}

// CreatePuzzle creates a new puzzle with a generated ID and timestamps.
func CreatePuzzle(input CreatePuzzleInput, now func() time.Time, idGenerator func() (string, error)) (Puzzle, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Puzzle{}, ErrPuzzleEmptyTitle
	}
	input.Solution = strings.TrimSpace(input.Solution)
	if input.Solution == "" {
		return Puzzle{}, ErrPuzzleEmptySolution
	}
	if input.Complexity <= 0 {
		return Puzzle{}, ErrPuzzleInvalidComplexity
	}

	puzzleID, err := idGenerator()
	if err != nil {
		return Puzzle{}, fmt.Errorf("generate puzzle id: %w", err)
	}

	createdAt := now().UTC()
	return Puzzle{
		ID:          puzzleID,
		Title:       input.Title,
		Description: input.Description,
		Complexity:  input.Complexity,
		Solution:    input.Solution,
		QuestID:     strings.TrimSpace(input.QuestID),
		DialogueID:  strings.TrimSpace(input.DialogueID),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
