// Package storage defines the persistence interfaces for the game engine.
//
// Tx groups every entity store behind one transactional view: WithinTx runs
// a function against that view and either commits all of its writes or none
// of them. Components never hold in-memory locks across store calls; all
// coordination happens through transactions and the session version fence.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("record already exists")
)

// ListQuery bounds a filtered list operation. Where holds a SQL fragment
// produced by the filter package from an AIP-160 expression; empty means no
// filtering. PageToken is the keyset cursor returned by a previous page.
type ListQuery struct {
	WhereClause string
	WhereParams []any
	PageSize    int
	PageToken   string
}

// CharacterPage is one page of character records.
type CharacterPage struct {
	Characters    []domain.Character
	NextPageToken string
}

// SessionPage is one page of session records.
type SessionPage struct {
	Sessions      []domain.Session
	NextPageToken string
}

// QuestPage is one page of quest records.
type QuestPage struct {
	Quests        []domain.Quest
	NextPageToken string
}

// DialoguePage is one page of dialogue records.
type DialoguePage struct {
	Dialogues     []domain.Dialogue
	NextPageToken string
}

// PuzzlePage is one page of puzzle records.
type PuzzlePage struct {
	Puzzles       []domain.Puzzle
	NextPageToken string
}

// TriggerRecord is one idempotency ledger row.
type TriggerRecord struct {
	Kind       domain.TriggerKind
	SourceID   string
	ResultJSON string
	AppliedAt  time.Time
}

// CharacterStore persists character records.
type CharacterStore interface {
	PutCharacter(ctx context.Context, character domain.Character) error
	GetCharacter(ctx context.Context, id string) (domain.Character, error)
	UpdateCharacter(ctx context.Context, character domain.Character) error
	DeleteCharacter(ctx context.Context, id string) error
	ListCharacters(ctx context.Context, query ListQuery) (CharacterPage, error)
}

// ItemStore persists inventory item records.
type ItemStore interface {
	PutItem(ctx context.Context, item domain.InventoryItem) error
	GetItem(ctx context.Context, id string) (domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item domain.InventoryItem) error
	DeleteItem(ctx context.Context, id string) error
	ListItemsByCharacter(ctx context.Context, characterID string) ([]domain.InventoryItem, error)
}

// QuestStore persists quest records and their item requirements.
type QuestStore interface {
	PutQuest(ctx context.Context, quest domain.Quest) error
	GetQuest(ctx context.Context, id string) (domain.Quest, error)
	UpdateQuest(ctx context.Context, quest domain.Quest) error
	DeleteQuest(ctx context.Context, id string) error
	ListQuests(ctx context.Context, query ListQuery) (QuestPage, error)
	ListQuestsByDialogue(ctx context.Context, dialogueID string) ([]domain.Quest, error)
}

// DialogueStore persists dialogue records.
type DialogueStore interface {
	PutDialogue(ctx context.Context, dialogue domain.Dialogue) error
	GetDialogue(ctx context.Context, id string) (domain.Dialogue, error)
	UpdateDialogue(ctx context.Context, dialogue domain.Dialogue) error
	DeleteDialogue(ctx context.Context, id string) error
	ListDialogues(ctx context.Context, query ListQuery) (DialoguePage, error)
	ListDialoguesByQuest(ctx context.Context, questID string) ([]domain.Dialogue, error)
	ListDialoguesByPuzzle(ctx context.Context, puzzleID string) ([]domain.Dialogue, error)
}

// PuzzleStore persists puzzle records.
type PuzzleStore interface {
	PutPuzzle(ctx context.Context, puzzle domain.Puzzle) error
	GetPuzzle(ctx context.Context, id string) (domain.Puzzle, error)
	UpdatePuzzle(ctx context.Context, puzzle domain.Puzzle) error
	DeletePuzzle(ctx context.Context, id string) error
	ListPuzzles(ctx context.Context, query ListQuery) (PuzzlePage, error)
	ListPuzzlesByDialogue(ctx context.Context, dialogueID string) ([]domain.Puzzle, error)
	ListPuzzlesByQuest(ctx context.Context, questID string) ([]domain.Puzzle, error)
}

// SessionStore persists multiplayer session records, including the
// participant set and the version counter.
type SessionStore interface {
	PutSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	UpdateSession(ctx context.Context, session domain.Session) error
	// DeleteSession is idempotent: deleting an absent session is not an
	// error, to tolerate duplicate "session ended" signals.
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, query ListQuery) (SessionPage, error)
	RemoveParticipant(ctx context.Context, characterID string) error
}

// RecipeStore reads crafting recipe content.
type RecipeStore interface {
	PutRecipe(ctx context.Context, recipe domain.CraftingRecipe) error
	ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error)
}

// TriggerLedgerStore persists the idempotency ledger for trigger dispatch.
type TriggerLedgerStore interface {
	// GetTriggerRecord returns ErrNotFound when the key has no record.
	GetTriggerRecord(ctx context.Context, kind domain.TriggerKind, sourceID string) (TriggerRecord, error)
	// PutTriggerRecord returns ErrAlreadyExists when the key is taken.
	PutTriggerRecord(ctx context.Context, record TriggerRecord) error
}

// Tx is the transactional view over every entity store.
type Tx interface {
	CharacterStore
	ItemStore
	QuestStore
	DialogueStore
	PuzzleStore
	SessionStore
	RecipeStore
	TriggerLedgerStore
}

// TxRunner executes a function inside one atomic transaction. The function's
// writes commit together or not at all; a context deadline aborts cleanly
// with zero persisted effects.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Store is the full persistence surface: direct (auto-commit) entity access
// plus the transaction runner.
type Store interface {
	Tx
	TxRunner
}
