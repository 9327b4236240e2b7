package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
)

const dialogueColumns = `id, character_id, content, quest_id, puzzle_id, unlocked, created_at, updated_at`

// PutDialogue inserts one dialogue record.
func (c *conn) PutDialogue(ctx context.Context, dialogue domain.Dialogue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(dialogue.ID) == "" {
		return fmt.Errorf("dialogue id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO dialogues (`+dialogueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dialogue.ID,
		dialogue.CharacterID,
		dialogue.Content,
		dialogue.QuestID,
		dialogue.PuzzleID,
		boolToInt(dialogue.Unlocked),
		toMillis(dialogue.CreatedAt),
		toMillis(dialogue.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put dialogue: %w", err)
	}
	return nil
}

// GetDialogue returns one dialogue record by id.
func (c *conn) GetDialogue(ctx context.Context, id string) (domain.Dialogue, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dialogue{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+dialogueColumns+` FROM dialogues WHERE id = ?`,
		strings.TrimSpace(id),
	)
	return scanDialogue(row.Scan)
}

// UpdateDialogue replaces one dialogue record.
func (c *conn) UpdateDialogue(ctx context.Context, dialogue domain.Dialogue) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE dialogues
		    SET character_id = ?, content = ?, quest_id = ?, puzzle_id = ?,
		        unlocked = ?, updated_at = ?
		  WHERE id = ?`,
		dialogue.CharacterID,
		dialogue.Content,
		dialogue.QuestID,
		dialogue.PuzzleID,
		boolToInt(dialogue.Unlocked),
		toMillis(dialogue.UpdatedAt),
		dialogue.ID,
	)
	if err != nil {
		return fmt.Errorf("update dialogue: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update dialogue: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteDialogue removes one dialogue record.
func (c *conn) DeleteDialogue(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM dialogues WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete dialogue: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dialogue: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListDialogues returns one filtered page of dialogue records.
func (c *conn) ListDialogues(ctx context.Context, query storage.ListQuery) (storage.DialoguePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.DialoguePage{}, err
	}

	suffix, params, pageSize, err := listClauses(query)
	if err != nil {
		return storage.DialoguePage{}, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+dialogueColumns+` FROM dialogues`+suffix,
		params...,
	)
	if err != nil {
		return storage.DialoguePage{}, fmt.Errorf("list dialogues: %w", err)
	}
	defer rows.Close()

	page := storage.DialoguePage{
		Dialogues: make([]domain.Dialogue, 0, pageSize),
	}
	for rows.Next() {
		dialogue, err := scanDialogue(rows.Scan)
		if err != nil {
			return storage.DialoguePage{}, fmt.Errorf("list dialogues: %w", err)
		}
		page.Dialogues = append(page.Dialogues, dialogue)
	}
	if err := rows.Err(); err != nil {
		return storage.DialoguePage{}, fmt.Errorf("list dialogues: %w", err)
	}
	if len(page.Dialogues) > pageSize {
		page.NextPageToken = page.Dialogues[pageSize-1].ID
		page.Dialogues = page.Dialogues[:pageSize]
	}
	return page, nil
}

// ListDialoguesByQuest returns every dialogue linked to one quest.
func (c *conn) ListDialoguesByQuest(ctx context.Context, questID string) ([]domain.Dialogue, error) {
	return c.listDialoguesBy(ctx, "quest_id", questID)
}

// ListDialoguesByPuzzle returns every dialogue linked to one puzzle.
func (c *conn) ListDialoguesByPuzzle(ctx context.Context, puzzleID string) ([]domain.Dialogue, error) {
	return c.listDialoguesBy(ctx, "puzzle_id", puzzleID)
}

func (c *conn) listDialoguesBy(ctx context.Context, column, value string) ([]domain.Dialogue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+dialogueColumns+` FROM dialogues WHERE `+column+` = ? ORDER BY id ASC`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("list dialogues by %s: %w", column, err)
	}
	defer rows.Close()

	var dialogues []domain.Dialogue
	for rows.Next() {
		dialogue, err := scanDialogue(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list dialogues by %s: %w", column, err)
		}
		dialogues = append(dialogues, dialogue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dialogues by %s: %w", column, err)
	}
	return dialogues, nil
}

func scanDialogue(scan func(dest ...any) error) (domain.Dialogue, error) {
	var dialogue domain.Dialogue
	var unlocked int
	var createdAt int64
	var updatedAt int64
	err := scan(
		&dialogue.ID,
		&dialogue.CharacterID,
		&dialogue.Content,
		&dialogue.QuestID,
		&dialogue.PuzzleID,
		&unlocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Dialogue{}, storage.ErrNotFound
		}
		return domain.Dialogue{}, fmt.Errorf("scan dialogue: %w", err)
	}
	dialogue.Unlocked = unlocked != 0
	dialogue.CreatedAt = fromMillis(createdAt)
	dialogue.UpdatedAt = fromMillis(updatedAt)
	return dialogue, nil
}
