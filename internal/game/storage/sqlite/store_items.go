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

const itemColumns = `id, character_id, item_type, name, quantity, status, description, created_at, updated_at`

// PutItem inserts one inventory item stack.
func (c *conn) PutItem(ctx context.Context, item domain.InventoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO inventory_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.CharacterID,
		item.ItemType,
		item.Name,
		item.Quantity,
		string(item.Status),
		item.Description,
		toMillis(item.CreatedAt),
		toMillis(item.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// GetItem returns one inventory item by id.
func (c *conn) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.InventoryItem{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`,
		strings.TrimSpace(id),
	)
	return scanItem(row.Scan)
}

// UpdateItem replaces one inventory item record. Ownership transfer happens
// through this method only.
func (c *conn) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE inventory_items
		    SET character_id = ?, item_type = ?, name = ?, quantity = ?,
		        status = ?, description = ?, updated_at = ?
		  WHERE id = ?`,
		item.CharacterID,
		item.ItemType,
		item.Name,
		item.Quantity,
		string(item.Status),
		item.Description,
		toMillis(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteItem removes one inventory item record.
func (c *conn) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListItemsByCharacter returns every item stack owned by one character,
// ordered by id for stable aggregation.
func (c *conn) ListItemsByCharacter(ctx context.Context, characterID string) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE character_id = ? ORDER BY id ASC`,
		strings.TrimSpace(characterID),
	)
	if err != nil {
		return nil, fmt.Errorf("list items by character: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list items by character: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items by character: %w", err)
	}
	return items, nil
}

func scanItem(scan func(dest ...any) error) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var status string
	var createdAt int64
	var updatedAt int64
	err := scan(
		&item.ID,
		&item.CharacterID,
		&item.ItemType,
		&item.Name,
		&item.Quantity,
		&status,
		&item.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InventoryItem{}, storage.ErrNotFound
		}
		return domain.InventoryItem{}, fmt.Errorf("scan item: %w", err)
	}
	item.Status = domain.ItemStatus(status)
	item.CreatedAt = fromMillis(createdAt)
	item.UpdatedAt = fromMillis(updatedAt)
	return item, nil
}
