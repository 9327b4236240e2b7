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

const characterColumns = `id, name, player_profile_id, appearance, customization_json, created_at, updated_at`

// PutCharacter inserts one character record.
func (c *conn) PutCharacter(ctx context.Context, character domain.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(character.ID) == "" {
		return fmt.Errorf("character id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO characters (`+characterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		character.ID,
		character.Name,
		character.PlayerProfileID,
		character.Appearance,
		character.CustomizationJSON,
		toMillis(character.CreatedAt),
		toMillis(character.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter returns one character record by id.
func (c *conn) GetCharacter(ctx context.Context, id string) (domain.Character, error) {
	if err := ctx.Err(); err != nil {
		return domain.Character{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`,
		strings.TrimSpace(id),
	)
	return scanCharacter(row.Scan)
}

// UpdateCharacter replaces one character record.
func (c *conn) UpdateCharacter(ctx context.Context, character domain.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE characters
		    SET name = ?, player_profile_id = ?, appearance = ?,
		        customization_json = ?, updated_at = ?
		  WHERE id = ?`,
		character.Name,
		character.PlayerProfileID,
		character.Appearance,
		character.CustomizationJSON,
		toMillis(character.UpdatedAt),
		character.ID,
	)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCharacter removes one character record.
func (c *conn) DeleteCharacter(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListCharacters returns one filtered page of character records.
func (c *conn) ListCharacters(ctx context.Context, query storage.ListQuery) (storage.CharacterPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CharacterPage{}, err
	}

	suffix, params, pageSize, err := listClauses(query)
	if err != nil {
		return storage.CharacterPage{}, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+characterColumns+` FROM characters`+suffix,
		params...,
	)
	if err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	page := storage.CharacterPage{
		Characters: make([]domain.Character, 0, pageSize),
	}
	for rows.Next() {
		character, err := scanCharacter(rows.Scan)
		if err != nil {
			return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
		}
		page.Characters = append(page.Characters, character)
	}
	if err := rows.Err(); err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	if len(page.Characters) > pageSize {
		page.NextPageToken = page.Characters[pageSize-1].ID
		page.Characters = page.Characters[:pageSize]
	}
	return page, nil
}

func scanCharacter(scan func(dest ...any) error) (domain.Character, error) {
	var character domain.Character
	var createdAt int64
	var updatedAt int64
	err := scan(
		&character.ID,
		&character.Name,
		&character.PlayerProfileID,
		&character.Appearance,
		&character.CustomizationJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Character{}, storage.ErrNotFound
		}
		return domain.Character{}, fmt.Errorf("scan character: %w", err)
	}
	character.CreatedAt = fromMillis(createdAt)
	character.UpdatedAt = fromMillis(updatedAt)
	return character, nil
}
