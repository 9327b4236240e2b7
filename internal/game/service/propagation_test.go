package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

func TestMarkPuzzleCompletedPropagates(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
		QuestID:    quest.ID,
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "The gate creaks open.",
		PuzzleID:    puzzle.ID,
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}

	result, err := svc.MarkPuzzleCompleted(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("mark puzzle completed: %v", err)
	}
	if result.Replayed {
		t.Fatal("first dispatch reported replayed")
	}
	if len(result.Effects) != 2 {
		t.Fatalf("effects = %+v, want quest advance + dialogue unlock", result.Effects)
	}

	gotPuzzle, err := svc.GetPuzzle(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("get puzzle: %v", err)
	}
	if !gotPuzzle.Completed {
		t.Fatal("puzzle not marked completed")
	}
	gotQuest, err := svc.GetQuest(ctx, quest.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if gotQuest.Progress != 1 {
		t.Fatalf("quest progress = %d, want 1", gotQuest.Progress)
	}
	gotDialogue, err := svc.GetDialogue(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("get dialogue: %v", err)
	}
	if !gotDialogue.Unlocked {
		t.Fatal("dialogue not unlocked")
	}
}

func TestMarkPuzzleCompletedReplaysIdempotently(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
		QuestID:    quest.ID,
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}

	first, err := svc.MarkPuzzleCompleted(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	second, err := svc.MarkPuzzleCompleted(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if !second.Replayed {
		t.Fatal("second dispatch not marked replayed")
	}
	if len(second.Effects) != len(first.Effects) {
		t.Fatalf("replayed effects = %+v, want recorded %+v", second.Effects, first.Effects)
	}

	// Effects applied exactly once.
	gotQuest, err := svc.GetQuest(ctx, quest.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if gotQuest.Progress != 1 {
		t.Fatalf("quest progress = %d, want 1", gotQuest.Progress)
	}
}

func TestTriggerDialogueEventUnlocksPuzzle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "Try pushing it.",
		QuestID:     quest.ID,
		PuzzleID:    puzzle.ID,
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}

	result, err := svc.TriggerDialogueEvent(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("trigger dialogue: %v", err)
	}
	if len(result.Effects) != 2 {
		t.Fatalf("effects = %+v", result.Effects)
	}

	gotQuest, err := svc.GetQuest(ctx, quest.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if gotQuest.Progress != 1 {
		t.Fatalf("quest progress = %d, want 1", gotQuest.Progress)
	}
	gotPuzzle, err := svc.GetPuzzle(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("get puzzle: %v", err)
	}
	if !gotPuzzle.Unlocked {
		t.Fatal("puzzle not unlocked")
	}
}

func TestDeleteQuestClearsLinks(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
		QuestID:    quest.ID,
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "About that gate...",
		QuestID:     quest.ID,
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}

	if err := svc.DeleteQuest(ctx, quest.ID); err != nil {
		t.Fatalf("delete quest: %v", err)
	}

	if _, err := svc.GetQuest(ctx, quest.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get deleted quest = %v, want NotFound", err)
	}
	gotPuzzle, err := svc.GetPuzzle(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("get puzzle: %v", err)
	}
	if gotPuzzle.QuestID != "" {
		t.Fatalf("puzzle quest link = %q, want cleared", gotPuzzle.QuestID)
	}
	gotDialogue, err := svc.GetDialogue(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("get dialogue: %v", err)
	}
	if gotDialogue.QuestID != "" {
		t.Fatalf("dialogue quest link = %q, want cleared", gotDialogue.QuestID)
	}
}

func TestDeleteCharacterCascades(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	host := mustCreateCharacter(t, svc, "host")
	guest := mustCreateCharacter(t, svc, "guest")
	mustAddItem(t, svc, guest.ID, "rope", 2)
	session := mustCreateSession(t, svc, host.ID, guest.ID)

	if err := svc.DeleteCharacter(ctx, guest.ID); err != nil {
		t.Fatalf("delete character: %v", err)
	}

	if _, err := svc.GetCharacter(ctx, guest.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get deleted character = %v, want NotFound", err)
	}
	gotSession, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(gotSession.Participants) != 1 || gotSession.Participants[0] != host.ID {
		t.Fatalf("participants = %v, want [%s]", gotSession.Participants, host.ID)
	}
	if _, err := svc.GetInventoryItems(ctx, guest.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("inventory of deleted character = %v, want NotFound", err)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.Dispatch(context.Background(), domain.TriggerEvent{Kind: "UNKNOWN", SourceID: "x"})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("dispatch = %v, want Validation", err)
	}
}

func TestTriggerDialogueEventFailureLeavesNoLedgerRow(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "Hello there.",
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}

	// A dangling quest link makes the dialogue-triggered effect fail.
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Temp"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	questID := quest.ID
	if _, err := svc.UpdateDialogue(ctx, UpdateDialogueInput{DialogueID: dialogue.ID, QuestID: &questID}); err != nil {
		t.Fatalf("link dialogue: %v", err)
	}
	if err := svc.store.DeleteQuest(ctx, quest.ID); err != nil {
		t.Fatalf("drop quest row: %v", err)
	}

	_, err = svc.TriggerDialogueEvent(ctx, dialogue.ID)
	if !apperrors.IsCode(err, apperrors.CodePropagation) {
		t.Fatalf("trigger = %v, want Propagation", err)
	}

	// No ledger row was recorded; fixing the link lets the trigger run.
	empty := ""
	if _, err := svc.UpdateDialogue(ctx, UpdateDialogueInput{DialogueID: dialogue.ID, QuestID: &empty}); err != nil {
		t.Fatalf("unlink dialogue: %v", err)
	}
	result, err := svc.TriggerDialogueEvent(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("retry trigger: %v", err)
	}
	if result.Replayed {
		t.Fatal("failed dispatch left a ledger record")
	}
}

func TestDeleteDialogueClearsLinks(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "The gate is stuck.",
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	quest.DialogueID = dialogue.ID
	if err := svc.store.UpdateQuest(ctx, quest); err != nil {
		t.Fatalf("link quest: %v", err)
	}
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
		DialogueID: dialogue.ID,
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}

	if err := svc.DeleteDialogue(ctx, dialogue.ID); err != nil {
		t.Fatalf("delete dialogue: %v", err)
	}

	if _, err := svc.GetDialogue(ctx, dialogue.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get deleted dialogue = %v, want NotFound", err)
	}
	gotQuest, err := svc.GetQuest(ctx, quest.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if gotQuest.DialogueID != "" {
		t.Fatalf("quest dialogue link = %q, want cleared", gotQuest.DialogueID)
	}
	gotPuzzle, err := svc.GetPuzzle(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("get puzzle: %v", err)
	}
	if gotPuzzle.DialogueID != "" {
		t.Fatalf("puzzle dialogue link = %q, want cleared", gotPuzzle.DialogueID)
	}
}

// questUpdateFailStore fails every quest update inside a transaction so the
// cascade's quest-side effect cannot complete.
type questUpdateFailStore struct {
	storage.Store
	err error
}

func (s *questUpdateFailStore) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.Store.WithinTx(ctx, func(tx storage.Tx) error {
		return fn(&questUpdateFailTx{Tx: tx, err: s.err})
	})
}

type questUpdateFailTx struct {
	storage.Tx
	err error
}

func (t *questUpdateFailTx) UpdateQuest(context.Context, domain.Quest) error {
	return t.err
}

func TestDeleteDialogueRollsBackOnFailedQuestUpdate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "The gate is stuck.",
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}
	quest, err := svc.CreateQuest(ctx, domain.CreateQuestInput{Name: "Open the gate"})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	quest.DialogueID = dialogue.ID
	if err := svc.store.UpdateQuest(ctx, quest); err != nil {
		t.Fatalf("link quest: %v", err)
	}

	sentinel := errors.New("quest update rejected")
	realStore := svc.store
	svc.store = &questUpdateFailStore{Store: realStore, err: sentinel}

	if err := svc.DeleteDialogue(ctx, dialogue.ID); !errors.Is(err, sentinel) {
		t.Fatalf("delete dialogue = %v, want sentinel", err)
	}

	// Quest-side failure rolled the deletion back with it.
	svc.store = realStore
	gotDialogue, err := svc.GetDialogue(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("get dialogue after rollback: %v", err)
	}
	if gotDialogue.ID != dialogue.ID {
		t.Fatalf("dialogue = %+v, want original", gotDialogue)
	}
	gotQuest, err := svc.GetQuest(ctx, quest.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if gotQuest.DialogueID != dialogue.ID {
		t.Fatalf("quest dialogue link = %q, want %q", gotQuest.DialogueID, dialogue.ID)
	}
}

func TestDeletePuzzleClearsLinks(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	speaker := mustCreateCharacter(t, svc, "speaker")
	puzzle, err := svc.CreatePuzzle(ctx, domain.CreatePuzzleInput{
		Title:      "Gate riddle",
		Complexity: 2,
		Solution:   "push",
	})
	if err != nil {
		t.Fatalf("create puzzle: %v", err)
	}
	dialogue, err := svc.CreateDialogue(ctx, domain.CreateDialogueInput{
		CharacterID: speaker.ID,
		Content:     "Try pushing it.",
		PuzzleID:    puzzle.ID,
	})
	if err != nil {
		t.Fatalf("create dialogue: %v", err)
	}

	if err := svc.DeletePuzzle(ctx, puzzle.ID); err != nil {
		t.Fatalf("delete puzzle: %v", err)
	}

	if _, err := svc.GetPuzzle(ctx, puzzle.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get deleted puzzle = %v, want NotFound", err)
	}
	gotDialogue, err := svc.GetDialogue(ctx, dialogue.ID)
	if err != nil {
		t.Fatalf("get dialogue: %v", err)
	}
	if gotDialogue.PuzzleID != "" {
		t.Fatalf("dialogue puzzle link = %q, want cleared", gotDialogue.PuzzleID)
	}
}
