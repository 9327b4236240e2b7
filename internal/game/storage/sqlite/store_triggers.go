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

// GetTriggerRecord returns the ledger row for one (kind, source) key.
func (c *conn) GetTriggerRecord(ctx context.Context, kind domain.TriggerKind, sourceID string) (storage.TriggerRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TriggerRecord{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT event_kind, source_id, result_json, applied_at
		   FROM trigger_ledger
		  WHERE event_kind = ? AND source_id = ?`,
		string(kind),
		strings.TrimSpace(sourceID),
	)

	var record storage.TriggerRecord
	var eventKind string
	var appliedAt int64
	err := row.Scan(&eventKind, &record.SourceID, &record.ResultJSON, &appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TriggerRecord{}, storage.ErrNotFound
		}
		return storage.TriggerRecord{}, fmt.Errorf("get trigger record: %w", err)
	}
	record.Kind = domain.TriggerKind(eventKind)
	record.AppliedAt = fromMillis(appliedAt)
	return record, nil
}

// PutTriggerRecord inserts one ledger row. The (kind, source) key is
// write-once; a duplicate insert reports ErrAlreadyExists.
func (c *conn) PutTriggerRecord(ctx context.Context, record storage.TriggerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.SourceID) == "" {
		return fmt.Errorf("trigger source id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO trigger_ledger (event_kind, source_id, result_json, applied_at)
		 VALUES (?, ?, ?, ?)`,
		string(record.Kind),
		record.SourceID,
		record.ResultJSON,
		toMillis(record.AppliedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put trigger record: %w", err)
	}
	return nil
}
