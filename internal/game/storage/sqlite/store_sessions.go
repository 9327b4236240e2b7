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

const sessionColumns = `id, host_character_id, session_type, settings_json, game_state, is_active, version, created_at, updated_at`

// PutSession inserts one session record with its participant set.
func (c *conn) PutSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.HostCharacterID,
		session.SessionType,
		session.SettingsJSON,
		session.GameState,
		boolToInt(session.IsActive),
		session.Version,
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put session: %w", err)
	}

	return c.replaceSessionParticipants(ctx, session.ID, session.Participants)
}

// GetSession returns one session with participants in insertion order.
func (c *conn) GetSession(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`,
		strings.TrimSpace(id),
	)
	session, err := scanSession(row.Scan)
	if err != nil {
		return domain.Session{}, err
	}

	session.Participants, err = c.sessionParticipants(ctx, session.ID)
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// UpdateSession replaces one session record and its participant set.
func (c *conn) UpdateSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.db.ExecContext(
		ctx,
		`UPDATE sessions
		    SET host_character_id = ?, session_type = ?, settings_json = ?,
		        game_state = ?, is_active = ?, version = ?, updated_at = ?
		  WHERE id = ?`,
		session.HostCharacterID,
		session.SessionType,
		session.SettingsJSON,
		session.GameState,
		boolToInt(session.IsActive),
		session.Version,
		toMillis(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return c.replaceSessionParticipants(ctx, session.ID, session.Participants)
}

// DeleteSession removes one session record. Deleting an absent session is
// not an error; duplicate end-of-session signals are tolerated.
func (c *conn) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions returns one filtered page of session records.
func (c *conn) ListSessions(ctx context.Context, query storage.ListQuery) (storage.SessionPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionPage{}, err
	}

	suffix, params, pageSize, err := listClauses(query)
	if err != nil {
		return storage.SessionPage{}, err
	}

	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions`+suffix,
		params...,
	)
	if err != nil {
		return storage.SessionPage{}, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	page := storage.SessionPage{
		Sessions: make([]domain.Session, 0, pageSize),
	}
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return storage.SessionPage{}, fmt.Errorf("list sessions: %w", err)
		}
		page.Sessions = append(page.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return storage.SessionPage{}, fmt.Errorf("list sessions: %w", err)
	}
	if len(page.Sessions) > pageSize {
		page.NextPageToken = page.Sessions[pageSize-1].ID
		page.Sessions = page.Sessions[:pageSize]
	}

	for i := range page.Sessions {
		page.Sessions[i].Participants, err = c.sessionParticipants(ctx, page.Sessions[i].ID)
		if err != nil {
			return storage.SessionPage{}, err
		}
	}
	return page, nil
}

// RemoveParticipant drops one character from every session's participant
// set, used when a character is deleted.
func (c *conn) RemoveParticipant(ctx context.Context, characterID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.db.ExecContext(
		ctx,
		`DELETE FROM session_participants WHERE character_id = ?`,
		strings.TrimSpace(characterID),
	); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

func (c *conn) replaceSessionParticipants(ctx context.Context, sessionID string, participants []string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session_participants WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("replace session participants: %w", err)
	}
	for position, characterID := range participants {
		if _, err := c.db.ExecContext(
			ctx,
			`INSERT INTO session_participants (session_id, character_id, position) VALUES (?, ?, ?)`,
			sessionID,
			characterID,
			position,
		); err != nil {
			return fmt.Errorf("replace session participants: %w", err)
		}
	}
	return nil
}

func (c *conn) sessionParticipants(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT character_id FROM session_participants WHERE session_id = ? ORDER BY position ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("session participants: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var characterID string
		if err := rows.Scan(&characterID); err != nil {
			return nil, fmt.Errorf("session participants: %w", err)
		}
		participants = append(participants, characterID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session participants: %w", err)
	}
	return participants, nil
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var session domain.Session
	var isActive int
	var createdAt int64
	var updatedAt int64
	err := scan(
		&session.ID,
		&session.HostCharacterID,
		&session.SessionType,
		&session.SettingsJSON,
		&session.GameState,
		&isActive,
		&session.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.IsActive = isActive != 0
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}
