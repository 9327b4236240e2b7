package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	"github.com/cheeseisland/engine/internal/platform/id"
)

var (
	// ErrSessionEmptyHost indicates a missing host character reference.
	ErrSessionEmptyHost = apperrors.New(apperrors.CodeValidation, "host character id is required")
	// ErrSessionEmptyType indicates a missing session type.
	ErrSessionEmptyType = apperrors.New(apperrors.CodeValidation, "session type is required")
	// ErrSessionInactive indicates a membership change on an inactive session.
	ErrSessionInactive = apperrors.New(apperrors.CodeConflict, "session is not active")
)

// Session represents a bounded multiplayer play context grouping participant
// characters and shared game state.
//
// Participants are unique with insertion order preserved so broadcasts are
// deterministic. Version increases by exactly 1 per accepted state update;
// it never decreases and never skips while the session is active.
type Session struct {
	ID              string
	HostCharacterID string
	Participants    []string
	SessionType     string
	SettingsJSON    string
	GameState       string
	IsActive        bool
	Version         uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateSessionInput describes the data needed to create a session.
type CreateSessionInput struct {
	HostCharacterID         string
	ParticipantCharacterIDs []string
	SessionType             string
	SettingsJSON            string
}

// CreateSession creates a new active session at version 0. The host is always
// a participant; duplicates are dropped while preserving first appearance.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.HostCharacterID = strings.TrimSpace(input.HostCharacterID)
	if input.HostCharacterID == "" {
		return Session{}, ErrSessionEmptyHost
	}
	input.SessionType = strings.TrimSpace(input.SessionType)
	if input.SessionType == "" {
		return Session{}, ErrSessionEmptyType
	}

	participants := DedupeParticipants(append([]string{input.HostCharacterID}, input.ParticipantCharacterIDs...))

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	createdAt := now().UTC()
	return Session{
		ID:              sessionID,
		HostCharacterID: input.HostCharacterID,
		Participants:    participants,
		SessionType:     input.SessionType,
		SettingsJSON:    input.SettingsJSON,
		IsActive:        true,
		Version:         0,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// DedupeParticipants removes duplicate and blank ids, preserving insertion order.
func DedupeParticipants(ids []string) []string {
	deduped := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, candidate := range ids {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}
