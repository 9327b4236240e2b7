package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func testCharacter(id string) domain.Character {
	now := testClock()
	return domain.Character{
		ID:              id,
		Name:            "Guybrush",
		PlayerProfileID: "profile-1",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	character := testCharacter("char-1")
	character.Appearance = "pirate"
	if err := store.PutCharacter(ctx, character); err != nil {
		t.Fatalf("put character: %v", err)
	}

	got, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Name != "Guybrush" || got.Appearance != "pirate" {
		t.Fatalf("unexpected character: %+v", got)
	}
	if !got.CreatedAt.Equal(testClock()) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, testClock())
	}

	if err := store.PutCharacter(ctx, character); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put = %v, want ErrAlreadyExists", err)
	}

	got.Name = "Threepwood"
	if err := store.UpdateCharacter(ctx, got); err != nil {
		t.Fatalf("update character: %v", err)
	}
	updated, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if updated.Name != "Threepwood" {
		t.Fatalf("name = %q, want Threepwood", updated.Name)
	}

	if err := store.DeleteCharacter(ctx, "char-1"); err != nil {
		t.Fatalf("delete character: %v", err)
	}
	if _, err := store.GetCharacter(ctx, "char-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if err := store.DeleteCharacter(ctx, "char-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestListCharactersPagination(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := store.PutCharacter(ctx, testCharacter(fmt.Sprintf("char-%d", i))); err != nil {
			t.Fatalf("put character %d: %v", i, err)
		}
	}

	first, err := store.ListCharacters(ctx, storage.ListQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(first.Characters) != 2 {
		t.Fatalf("first page size = %d, want 2", len(first.Characters))
	}
	if first.NextPageToken != "char-2" {
		t.Fatalf("next page token = %q, want char-2", first.NextPageToken)
	}

	second, err := store.ListCharacters(ctx, storage.ListQuery{PageSize: 2, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(second.Characters) != 2 || second.Characters[0].ID != "char-3" {
		t.Fatalf("unexpected second page: %+v", second)
	}

	last, err := store.ListCharacters(ctx, storage.ListQuery{PageSize: 2, PageToken: second.NextPageToken})
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(last.Characters) != 1 || last.NextPageToken != "" {
		t.Fatalf("unexpected last page: %+v", last)
	}
}

func TestListCharactersFiltered(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	a := testCharacter("char-a")
	a.PlayerProfileID = "profile-a"
	b := testCharacter("char-b")
	b.PlayerProfileID = "profile-b"
	for _, character := range []domain.Character{a, b} {
		if err := store.PutCharacter(ctx, character); err != nil {
			t.Fatalf("put character: %v", err)
		}
	}

	page, err := store.ListCharacters(ctx, storage.ListQuery{
		WhereClause: "player_profile_id = ?",
		WhereParams: []any{"profile-b"},
		PageSize:    10,
	})
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(page.Characters) != 1 || page.Characters[0].ID != "char-b" {
		t.Fatalf("unexpected filtered page: %+v", page)
	}
}

func TestSessionParticipantsOrder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := testClock()

	session := domain.Session{
		ID:              "session-1",
		HostCharacterID: "char-host",
		Participants:    []string{"char-host", "char-z", "char-a"},
		SessionType:     "COOP",
		IsActive:        true,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.PutSession(ctx, session); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	want := []string{"char-host", "char-z", "char-a"}
	if len(got.Participants) != len(want) {
		t.Fatalf("participants = %v, want %v", got.Participants, want)
	}
	for i := range want {
		if got.Participants[i] != want[i] {
			t.Fatalf("participants = %v, want %v", got.Participants, want)
		}
	}

	got.Version = 1
	got.Participants = []string{"char-host", "char-a"}
	if err := store.UpdateSession(ctx, got); err != nil {
		t.Fatalf("update session: %v", err)
	}
	updated, err := store.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("version = %d, want 1", updated.Version)
	}
	if len(updated.Participants) != 2 || updated.Participants[1] != "char-a" {
		t.Fatalf("participants = %v", updated.Participants)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.DeleteSession(ctx, "missing"); err != nil {
		t.Fatalf("delete absent session: %v", err)
	}
}

func TestRemoveParticipant(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := testClock()

	session := domain.Session{
		ID:              "session-1",
		HostCharacterID: "char-host",
		Participants:    []string{"char-host", "char-gone"},
		SessionType:     "COOP",
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.PutSession(ctx, session); err != nil {
		t.Fatalf("put session: %v", err)
	}

	if err := store.RemoveParticipant(ctx, "char-gone"); err != nil {
		t.Fatalf("remove participant: %v", err)
	}
	got, err := store.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(got.Participants) != 1 || got.Participants[0] != "char-host" {
		t.Fatalf("participants = %v, want [char-host]", got.Participants)
	}
}

func TestQuestRequiredItemsOrder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := testClock()

	quest := domain.Quest{
		ID:            "quest-1",
		Name:          "Find the cheese",
		RequiredItems: []string{"map", "key", "rope"},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.PutQuest(ctx, quest); err != nil {
		t.Fatalf("put quest: %v", err)
	}

	got, err := store.GetQuest(ctx, "quest-1")
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	want := []string{"map", "key", "rope"}
	if len(got.RequiredItems) != len(want) {
		t.Fatalf("required items = %v, want %v", got.RequiredItems, want)
	}
	for i := range want {
		if got.RequiredItems[i] != want[i] {
			t.Fatalf("required items = %v, want %v", got.RequiredItems, want)
		}
	}

	got.RequiredItems = []string{"rope"}
	if err := store.UpdateQuest(ctx, got); err != nil {
		t.Fatalf("update quest: %v", err)
	}
	updated, err := store.GetQuest(ctx, "quest-1")
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if len(updated.RequiredItems) != 1 || updated.RequiredItems[0] != "rope" {
		t.Fatalf("required items = %v, want [rope]", updated.RequiredItems)
	}
}

func TestPuzzleHintsRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := testClock()

	puzzle := domain.Puzzle{
		ID:         "puzzle-1",
		Title:      "Door riddle",
		Complexity: 3,
		Solution:   "turn the handle",
		Hints:      []string{"look down", "try the obvious"},
		QuestID:    "quest-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.PutPuzzle(ctx, puzzle); err != nil {
		t.Fatalf("put puzzle: %v", err)
	}

	got, err := store.GetPuzzle(ctx, "puzzle-1")
	if err != nil {
		t.Fatalf("get puzzle: %v", err)
	}
	if len(got.Hints) != 2 || got.Hints[1] != "try the obvious" {
		t.Fatalf("hints = %v", got.Hints)
	}

	byQuest, err := store.ListPuzzlesByQuest(ctx, "quest-1")
	if err != nil {
		t.Fatalf("list puzzles by quest: %v", err)
	}
	if len(byQuest) != 1 || byQuest[0].ID != "puzzle-1" {
		t.Fatalf("puzzles by quest = %+v", byQuest)
	}
}

func TestTriggerLedgerWriteOnce(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	record := storage.TriggerRecord{
		Kind:       domain.TriggerPuzzleCompleted,
		SourceID:   "puzzle-1",
		ResultJSON: `{"effects":[]}`,
		AppliedAt:  testClock(),
	}
	if err := store.PutTriggerRecord(ctx, record); err != nil {
		t.Fatalf("put trigger record: %v", err)
	}
	if err := store.PutTriggerRecord(ctx, record); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put = %v, want ErrAlreadyExists", err)
	}

	got, err := store.GetTriggerRecord(ctx, domain.TriggerPuzzleCompleted, "puzzle-1")
	if err != nil {
		t.Fatalf("get trigger record: %v", err)
	}
	if got.ResultJSON != record.ResultJSON {
		t.Fatalf("result json = %q", got.ResultJSON)
	}

	// Same source under a different kind is a distinct key.
	if _, err := store.GetTriggerRecord(ctx, domain.TriggerPuzzleDeleted, "puzzle-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("other kind = %v, want ErrNotFound", err)
	}
}

func TestRecipeCatalog(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	recipe := domain.CraftingRecipe{
		ID:             "recipe-1",
		Name:           "Rope ladder",
		Ingredients:    map[string]int{"rope": 2, "plank": 4},
		ResultItemType: "ladder",
		ResultItemName: "Rope Ladder",
		CreatedAt:      testClock(),
	}
	if err := store.PutRecipe(ctx, recipe); err != nil {
		t.Fatalf("put recipe: %v", err)
	}

	recipes, err := store.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("recipes = %d, want 1", len(recipes))
	}
	if recipes[0].Ingredients["rope"] != 2 || recipes[0].Ingredients["plank"] != 4 {
		t.Fatalf("ingredients = %v", recipes[0].Ingredients)
	}
}

func TestWithinTxCommitsTogether(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx storage.Tx) error {
		if err := tx.PutCharacter(ctx, testCharacter("char-1")); err != nil {
			return err
		}
		item := domain.InventoryItem{
			ID:          "item-1",
			CharacterID: "char-1",
			ItemType:    "rope",
			Name:        "Rope",
			Quantity:    1,
			Status:      domain.ItemStatusActive,
			CreatedAt:   testClock(),
			UpdatedAt:   testClock(),
		}
		return tx.PutItem(ctx, item)
	})
	if err != nil {
		t.Fatalf("within tx: %v", err)
	}

	items, err := store.ListItemsByCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := store.WithinTx(ctx, func(tx storage.Tx) error {
		if err := tx.PutCharacter(ctx, testCharacter("char-1")); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("within tx = %v, want sentinel", err)
	}

	if _, err := store.GetCharacter(ctx, "char-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after rollback = %v, want ErrNotFound", err)
	}
}

func TestWithinTxConflictOnWriteRace(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	character := testCharacter("char-1")
	if err := store.PutCharacter(ctx, character); err != nil {
		t.Fatalf("put character: %v", err)
	}

	err := store.WithinTx(ctx, func(tx storage.Tx) error {
		// Pin the transaction's read snapshot before the rival write lands.
		inside, err := tx.GetCharacter(ctx, "char-1")
		if err != nil {
			return err
		}

		rival := character
		rival.Name = "LeChuck"
		if err := store.UpdateCharacter(ctx, rival); err != nil {
			return fmt.Errorf("rival update: %w", err)
		}

		inside.Name = "Threepwood"
		return tx.UpdateCharacter(ctx, inside)
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("within tx = %v, want Conflict", err)
	}

	// The rival write won; the losing transaction persisted nothing.
	got, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Name != "LeChuck" {
		t.Fatalf("name = %q, want LeChuck", got.Name)
	}
}
