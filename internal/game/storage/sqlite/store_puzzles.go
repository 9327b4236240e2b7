package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
)

const puzzleColumns = `id, title, description, complexity, solution, hints_json, completed, unlocked, quest_id, dialogue_id, created_at, updated_at`

// PutPuzzle inserts one puzzle record.
func (c *conn) PutPuzzle(ctx context.Context, puzzle domain.Puzzle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(puzzle.ID) == "" {
		return fmt.Errorf("puzzle id is required")
	}
	hintsJSON, err := marshalHints(puzzle.Hints)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(
		ctx,
		`INSERT INTO puzzles (`+puzzleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		puzzle.ID,
		puzzle.Title,
		puzzle.Description,
		puzzle.Complexity,
		puzzle.Solution,
		hintsJSON,
		boolToInt(puzzle.Completed),
		boolToInt(puzzle.Unlocked),
		puzzle.QuestID,
		puzzle.DialogueID,
		toMillis(puzzle.CreatedAt),
		toMillis(puzzle.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put puzzle: %w", err)
	}
	return nil
}

// GetPuzzle returns one puzzle record by id.
func (c *conn) GetPuzzle(ctx context.Context, id string) (domain.Puzzle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Puzzle{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`,
		strings.TrimSpace(id),
	)
	return scanPuzzle(row.Scan)
}

// UpdatePuzzle replaces one puzzle record.
func (c *conn) UpdatePuzzle(ctx context.Context, puzzle domain.Puzzle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hintsJSON, err := marshalHints(puzzle.Hints)
	if err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE puzzles
		    SET title = ?, description = ?, complexity = ?, solution = ?,
		        hints_json = ?, completed = ?, unlocked = ?, quest_id = ?,
		        dialogue_id = ?, updated_at = ?
		  WHERE id = ?`,
		puzzle.Title,
		puzzle.Description,
		puzzle.Complexity,
		puzzle.Solution,
		hintsJSON,
		boolToInt(puzzle.Completed),
		boolToInt(puzzle.Unlocked),
		puzzle.QuestID,
		puzzle.DialogueID,
		toMillis(puzzle.UpdatedAt),
		puzzle.ID,
	)
	if err != nil {
		return fmt.Errorf("update puzzle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update puzzle: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeletePuzzle removes one puzzle record.
func (c *conn) DeletePuzzle(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM puzzles WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete puzzle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete puzzle: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPuzzles returns one filtered page of puzzle records.
func (c *conn) ListPuzzles(ctx context.Context, query storage.ListQuery) (storage.PuzzlePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.PuzzlePage{}, err
	}

	suffix, params, pageSize, err := listClauses(query)
	if err != nil {
		return storage.PuzzlePage{}, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+puzzleColumns+` FROM puzzles`+suffix,
		params...,
	)
	if err != nil {
		return storage.PuzzlePage{}, fmt.Errorf("list puzzles: %w", err)
	}
	defer rows.Close()

	page := storage.PuzzlePage{
		Puzzles: make([]domain.Puzzle, 0, pageSize),
	}
	for rows.Next() {
		puzzle, err := scanPuzzle(rows.Scan)
		if err != nil {
			return storage.PuzzlePage{}, fmt.Errorf("list puzzles: %w", err)
		}
		page.Puzzles = append(page.Puzzles, puzzle)
	}
	if err := rows.Err(); err != nil {
		return storage.PuzzlePage{}, fmt.Errorf("list puzzles: %w", err)
	}
	if len(page.Puzzles) > pageSize {
		page.NextPageToken = page.Puzzles[pageSize-1].ID
		page.Puzzles = page.Puzzles[:pageSize]
	}
	return page, nil
}

// ListPuzzlesByDialogue returns every puzzle linked to one dialogue.
func (c *conn) ListPuzzlesByDialogue(ctx context.Context, dialogueID string) ([]domain.Puzzle, error) {
	return c.listPuzzlesBy(ctx, "dialogue_id", dialogueID)
}

// ListPuzzlesByQuest returns every puzzle linked to one quest.
func (c *conn) ListPuzzlesByQuest(ctx context.Context, questID string) ([]domain.Puzzle, error) {
	return c.listPuzzlesBy(ctx, "quest_id", questID)
}

func (c *conn) listPuzzlesBy(ctx context.Context, column, value string) ([]domain.Puzzle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE `+column+` = ? ORDER BY id ASC`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("list puzzles by %s: %w", column, err)
	}
	defer rows.Close()

	var puzzles []domain.Puzzle
	for rows.Next() {
		puzzle, err := scanPuzzle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list puzzles by %s: %w", column, err)
		}
		puzzles = append(puzzles, puzzle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list puzzles by %s: %w", column, err)
	}
	return puzzles, nil
}

func marshalHints(hints []string) (string, error) {
	if len(hints) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(hints)
	if err != nil {
		return "", fmt.Errorf("marshal puzzle hints: %w", err)
	}
	return string(raw), nil
}

func scanPuzzle(scan func(dest ...any) error) (domain.Puzzle, error) {
	var puzzle domain.Puzzle
	var hintsJSON string
	var completed int
	var unlocked int
	var createdAt int64
	var updatedAt int64
	err := scan(
		&puzzle.ID,
		&puzzle.Title,
		&puzzle.Description,
		&puzzle.Complexity,
		&puzzle.Solution,
		&hintsJSON,
		&completed,
		&unlocked,
		&puzzle.QuestID,
		&puzzle.DialogueID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Puzzle{}, storage.ErrNotFound
		}
		return domain.Puzzle{}, fmt.Errorf("scan puzzle: %w", err)
	}
	if hintsJSON != "" && hintsJSON != "[]" {
		if err := json.Unmarshal([]byte(hintsJSON), &puzzle.Hints); err != nil {
			return domain.Puzzle{}, fmt.Errorf("unmarshal puzzle hints: %w", err)
		}
	}
	puzzle.Completed = completed != 0
	puzzle.Unlocked = unlocked != 0
	puzzle.CreatedAt = fromMillis(createdAt)
	puzzle.UpdatedAt = fromMillis(updatedAt)
	return puzzle, nil
}
