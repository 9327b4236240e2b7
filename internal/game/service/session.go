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

// ListSessionsInput bounds a session listing.
type ListSessionsInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// ListSessionsResult is one page of sessions.
type ListSessionsResult struct {
	Sessions      []domain.Session
	NextPageToken string
}

// UpdateSessionInput carries a session registry update. Nil fields are left
// unchanged; Participants replaces the whole membership set when non-nil.
type UpdateSessionInput struct {
	SessionID    string
	Participants []string
	GameState    *string
	IsActive     *bool
}

// CreateSession registers a new session after verifying that the host and
// every listed participant exist. The host always joins; duplicates are
// dropped preserving first appearance; the session starts active at version 0.
func (s *Service) CreateSession(ctx context.Context, input domain.CreateSessionInput) (domain.Session, error) {
	session, err := domain.CreateSession(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Session{}, err
	}

	err = s.store.WithinTx(ctx, func(tx storage.Tx) error {
		for _, characterID := range session.Participants {
			if _, err := tx.GetCharacter(ctx, characterID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return apperrors.WithMetadata(apperrors.CodeNotFound, "participant character not found", map[string]string{
						"character_id": characterID,
					})
				}
				return fmt.Errorf("resolve participant: %w", err)
			}
		}
		return tx.PutSession(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// GetSession returns one session by id.
func (s *Service) GetSession(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.store.GetSession(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Session{}, apperrors.New(apperrors.CodeNotFound, "session not found")
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListSessions returns one filtered page of sessions.
func (s *Service) ListSessions(ctx context.Context, input ListSessionsInput) (ListSessionsResult, error) {
	mapping, err := filter.SessionMapping()
	if err != nil {
		return ListSessionsResult{}, fmt.Errorf("session filter mapping: %w", err)
	}
	condition, err := filter.Parse(input.Filter, mapping)
	if err != nil {
		return ListSessionsResult{}, apperrors.Wrap(apperrors.CodeValidation, "invalid session filter", err)
	}

	page, err := s.store.ListSessions(ctx, storage.ListQuery{
		WhereClause: condition.Clause,
		WhereParams: condition.Params,
		PageSize:    clampPageSize(input.PageSize),
		PageToken:   input.PageToken,
	})
	if err != nil {
		return ListSessionsResult{}, fmt.Errorf("list sessions: %w", err)
	}
	return ListSessionsResult{
		Sessions:      page.Sessions,
		NextPageToken: page.NextPageToken,
	}, nil
}

// UpdateSession atomically replaces session membership and shared state.
// Membership changes on an inactive session are rejected with a conflict;
// reactivating and changing state remain allowed.
func (s *Service) UpdateSession(ctx context.Context, input UpdateSessionInput) (domain.Session, error) {
	var session domain.Session
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		session, err = tx.GetSession(ctx, strings.TrimSpace(input.SessionID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "session not found")
			}
			return fmt.Errorf("get session: %w", err)
		}

		if input.Participants != nil {
			if !session.IsActive {
				return domain.ErrSessionInactive
			}
			participants := domain.DedupeParticipants(append([]string{session.HostCharacterID}, input.Participants...))
			for _, characterID := range participants {
				if _, err := tx.GetCharacter(ctx, characterID); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						return apperrors.WithMetadata(apperrors.CodeNotFound, "participant character not found", map[string]string{
							"character_id": characterID,
						})
					}
					return fmt.Errorf("resolve participant: %w", err)
				}
			}
			session.Participants = participants
		}
		if input.GameState != nil {
			session.GameState = *input.GameState
		}
		if input.IsActive != nil {
			session.IsActive = *input.IsActive
		}
		session.UpdatedAt = s.clock().UTC()

		return tx.UpdateSession(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// DeleteSession removes a session. Deleting an absent session succeeds, so
// duplicate end-of-session signals are harmless.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
