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

// ListPuzzlesInput bounds a puzzle listing.
type ListPuzzlesInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// ListPuzzlesResult is one page of puzzles.
type ListPuzzlesResult struct {
	Puzzles       []domain.Puzzle
	NextPageToken string
}

// UpdatePuzzleInput carries a puzzle update; nil fields are unchanged.
type UpdatePuzzleInput struct {
	PuzzleID    string
	Title       *string
	Description *string
	Complexity  *int
	Solution    *string
	Hints       []string
}

// CreatePuzzle registers a new puzzle.
func (s *Service) CreatePuzzle(ctx context.Context, input domain.CreatePuzzleInput) (domain.Puzzle, error) {
	puzzle, err := domain.CreatePuzzle(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Puzzle{}, err
	}
	if err := s.store.PutPuzzle(ctx, puzzle); err != nil {
		return domain.Puzzle{}, fmt.Errorf("persist puzzle: %w", err)
	}
	return puzzle, nil
}

// GetPuzzle returns one puzzle by id.
func (s *Service) GetPuzzle(ctx context.Context, id string) (domain.Puzzle, error) {
	puzzle, err := s.store.GetPuzzle(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Puzzle{}, apperrors.New(apperrors.CodeNotFound, "puzzle not found")
		}
		return domain.Puzzle{}, fmt.Errorf("get puzzle: %w", err)
	}
	return puzzle, nil
}

// ListPuzzles returns one filtered page of puzzles.
func (s *Service) ListPuzzles(ctx context.Context, input ListPuzzlesInput) (ListPuzzlesResult, error) {
	mapping, err := filter.PuzzleMapping()
	if err != nil {
		return ListPuzzlesResult{}, fmt.Errorf("puzzle filter mapping: %w", err)
	}
	condition, err := filter.Parse(input.Filter, mapping)
	if err != nil {
		return ListPuzzlesResult{}, apperrors.Wrap(apperrors.CodeValidation, "invalid puzzle filter", err)
	}

	page, err := s.store.ListPuzzles(ctx, storage.ListQuery{
		WhereClause: condition.Clause,
		WhereParams: condition.Params,
		PageSize:    clampPageSize(input.PageSize),
		PageToken:   input.PageToken,
	})
	if err != nil {
		return ListPuzzlesResult{}, fmt.Errorf("list puzzles: %w", err)
	}
	return ListPuzzlesResult{
		Puzzles:       page.Puzzles,
		NextPageToken: page.NextPageToken,
	}, nil
}

// UpdatePuzzle applies a partial puzzle update. A non-nil Hints replaces the
// whole hint list.
func (s *Service) UpdatePuzzle(ctx context.Context, input UpdatePuzzleInput) (domain.Puzzle, error) {
	var puzzle domain.Puzzle
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		puzzle, err = tx.GetPuzzle(ctx, strings.TrimSpace(input.PuzzleID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "puzzle not found")
			}
			return fmt.Errorf("get puzzle: %w", err)
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return domain.ErrPuzzleEmptyTitle
			}
			puzzle.Title = title
		}
		if input.Description != nil {
			puzzle.Description = *input.Description
		}
		if input.Complexity != nil {
			if *input.Complexity <= 0 {
				return domain.ErrPuzzleInvalidComplexity
			}
			puzzle.Complexity = *input.Complexity
		}
		if input.Solution != nil {
			solution := strings.TrimSpace(*input.Solution)
			if solution == "" {
				return domain.ErrPuzzleEmptySolution
			}
			puzzle.Solution = solution
		}
		if input.Hints != nil {
			puzzle.Hints = input.Hints
		}
		puzzle.UpdatedAt = s.clock().UTC()

		return tx.UpdatePuzzle(ctx, puzzle)
	})
	if err != nil {
		return domain.Puzzle{}, err
	}
	return puzzle, nil
}
