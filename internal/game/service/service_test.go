package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	svc := NewService(store)
	svc.clock = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	var sequence int
	svc.idGenerator = func() (string, error) {
		sequence++
		return fmt.Sprintf("id-%04d", sequence), nil
	}
	return svc
}

func mustCreateCharacter(t *testing.T, svc *Service, name string) domain.Character {
	t.Helper()
	character, err := svc.CreateCharacter(context.Background(), domain.CreateCharacterInput{
		Name:            name,
		PlayerProfileID: "profile-" + name,
	})
	if err != nil {
		t.Fatalf("create character %s: %v", name, err)
	}
	return character
}

func mustAddItem(t *testing.T, svc *Service, characterID, itemType string, quantity int) domain.InventoryItem {
	t.Helper()
	item, err := svc.AddItem(context.Background(), domain.CreateItemInput{
		CharacterID: characterID,
		ItemType:    itemType,
		Name:        itemType,
		Quantity:    quantity,
	})
	if err != nil {
		t.Fatalf("add item %s: %v", itemType, err)
	}
	return item
}

func mustCreateSession(t *testing.T, svc *Service, hostID string, participants ...string) domain.Session {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), domain.CreateSessionInput{
		HostCharacterID:         hostID,
		ParticipantCharacterIDs: participants,
		SessionType:             "COOP",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}
