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

const questColumns = `id, name, description, narrative, dialogue_id, progress, is_active, created_at, updated_at`

// PutQuest inserts one quest record along with its item requirements.
func (c *conn) PutQuest(ctx context.Context, quest domain.Quest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(quest.ID) == "" {
		return fmt.Errorf("quest id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO quests (`+questColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quest.ID,
		quest.Name,
		quest.Description,
		quest.Narrative,
		quest.DialogueID,
		quest.Progress,
		boolToInt(quest.IsActive),
		toMillis(quest.CreatedAt),
		toMillis(quest.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put quest: %w", err)
	}

	return c.replaceQuestRequiredItems(ctx, quest.ID, quest.RequiredItems)
}

// GetQuest returns one quest record with its item requirements.
func (c *conn) GetQuest(ctx context.Context, id string) (domain.Quest, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quest{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+questColumns+` FROM quests WHERE id = ?`,
		strings.TrimSpace(id),
	)
	quest, err := scanQuest(row.Scan)
	if err != nil {
		return domain.Quest{}, err
	}

	quest.RequiredItems, err = c.questRequiredItems(ctx, quest.ID)
	if err != nil {
		return domain.Quest{}, err
	}
	return quest, nil
}

// UpdateQuest replaces one quest record and its item requirements.
func (c *conn) UpdateQuest(ctx context.Context, quest domain.Quest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE quests
		    SET name = ?, description = ?, narrative = ?, dialogue_id = ?,
		        progress = ?, is_active = ?, updated_at = ?
		  WHERE id = ?`,
		quest.Name,
		quest.Description,
		quest.Narrative,
		quest.DialogueID,
		quest.Progress,
		boolToInt(quest.IsActive),
		toMillis(quest.UpdatedAt),
		quest.ID,
	)
	if err != nil {
		return fmt.Errorf("update quest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quest: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return c.replaceQuestRequiredItems(ctx, quest.ID, quest.RequiredItems)
}

// DeleteQuest removes one quest record; requirements cascade.
func (c *conn) DeleteQuest(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM quests WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete quest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quest: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListQuests returns one filtered page of quest records.
func (c *conn) ListQuests(ctx context.Context, query storage.ListQuery) (storage.QuestPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.QuestPage{}, err
	}

	suffix, params, pageSize, err := listClauses(query)
	if err != nil {
		return storage.QuestPage{}, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+questColumns+` FROM quests`+suffix,
		params...,
	)
	if err != nil {
		return storage.QuestPage{}, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	page := storage.QuestPage{
		Quests: make([]domain.Quest, 0, pageSize),
	}
	for rows.Next() {
		quest, err := scanQuest(rows.Scan)
		if err != nil {
			return storage.QuestPage{}, fmt.Errorf("list quests: %w", err)
		}
		page.Quests = append(page.Quests, quest)
	}
	if err := rows.Err(); err != nil {
		return storage.QuestPage{}, fmt.Errorf("list quests: %w", err)
	}
	if len(page.Quests) > pageSize {
		page.NextPageToken = page.Quests[pageSize-1].ID
		page.Quests = page.Quests[:pageSize]
	}

	for i := range page.Quests {
		page.Quests[i].RequiredItems, err = c.questRequiredItems(ctx, page.Quests[i].ID)
		if err != nil {
			return storage.QuestPage{}, err
		}
	}
	return page, nil
}

// ListQuestsByDialogue returns every quest linked to one dialogue.
func (c *conn) ListQuestsByDialogue(ctx context.Context, dialogueID string) ([]domain.Quest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+questColumns+` FROM quests WHERE dialogue_id = ? ORDER BY id ASC`,
		strings.TrimSpace(dialogueID),
	)
	if err != nil {
		return nil, fmt.Errorf("list quests by dialogue: %w", err)
	}
	defer rows.Close()

	var quests []domain.Quest
	for rows.Next() {
		quest, err := scanQuest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list quests by dialogue: %w", err)
		}
		quests = append(quests, quest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quests by dialogue: %w", err)
	}

	for i := range quests {
		quests[i].RequiredItems, err = c.questRequiredItems(ctx, quests[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return quests, nil
}

func (c *conn) replaceQuestRequiredItems(ctx context.Context, questID string, itemTypes []string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM quest_required_items WHERE quest_id = ?`, questID); err != nil {
		return fmt.Errorf("replace quest required items: %w", err)
	}
	for position, itemType := range itemTypes {
		if _, err := c.db.ExecContext(
			ctx,
			`INSERT INTO quest_required_items (quest_id, item_type, position) VALUES (?, ?, ?)`,
			questID,
			itemType,
			position,
		); err != nil {
			return fmt.Errorf("replace quest required items: %w", err)
		}
	}
	return nil
}

func (c *conn) questRequiredItems(ctx context.Context, questID string) ([]string, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT item_type FROM quest_required_items WHERE quest_id = ? ORDER BY position ASC`,
		questID,
	)
	if err != nil {
		return nil, fmt.Errorf("quest required items: %w", err)
	}
	defer rows.Close()

	var itemTypes []string
	for rows.Next() {
		var itemType string
		if err := rows.Scan(&itemType); err != nil {
			return nil, fmt.Errorf("quest required items: %w", err)
		}
		itemTypes = append(itemTypes, itemType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest required items: %w", err)
	}
	return itemTypes, nil
}

func scanQuest(scan func(dest ...any) error) (domain.Quest, error) {
	var quest domain.Quest
	var isActive int
	var createdAt int64
	var updatedAt int64
	err := scan(
		&quest.ID,
		&quest.Name,
		&quest.Description,
		&quest.Narrative,
		&quest.DialogueID,
		&quest.Progress,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quest{}, storage.ErrNotFound
		}
		return domain.Quest{}, fmt.Errorf("scan quest: %w", err)
	}
	quest.IsActive = isActive != 0
	quest.CreatedAt = fromMillis(createdAt)
	quest.UpdatedAt = fromMillis(updatedAt)
	return quest, nil
}
