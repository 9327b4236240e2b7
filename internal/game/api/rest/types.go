package rest

import (
	"time"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
)

type characterResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PlayerProfileID string `json:"player_profile_id"`
	Appearance      string `json:"appearance,omitempty"`
	Customization   string `json:"customization,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toCharacterResponse(character domain.Character) characterResponse {
	return characterResponse{
		ID:              character.ID,
		Name:            character.Name,
		PlayerProfileID: character.PlayerProfileID,
		Appearance:      character.Appearance,
		Customization:   character.CustomizationJSON,
		CreatedAt:       character.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       character.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type itemResponse struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	ItemType    string `json:"item_type"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toItemResponse(item domain.InventoryItem) itemResponse {
	return itemResponse{
		ID:          item.ID,
		CharacterID: item.CharacterID,
		ItemType:    item.ItemType,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Status:      string(item.Status),
		Description: item.Description,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type questResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Narrative     string   `json:"narrative,omitempty"`
	DialogueID    string   `json:"dialogue_id,omitempty"`
	RequiredItems []string `json:"required_items"`
	Progress      int      `json:"progress"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func toQuestResponse(quest domain.Quest) questResponse {
	required := quest.RequiredItems
	if required == nil {
		required = []string{}
	}
	return questResponse{
		ID:            quest.ID,
		Name:          quest.Name,
		Description:   quest.Description,
		Narrative:     quest.Narrative,
		DialogueID:    quest.DialogueID,
		RequiredItems: required,
		Progress:      quest.Progress,
		IsActive:      quest.IsActive,
		CreatedAt:     quest.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     quest.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type dialogueResponse struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	Content     string `json:"content"`
	QuestID     string `json:"quest_id,omitempty"`
	PuzzleID    string `json:"puzzle_id,omitempty"`
	Unlocked    bool   `json:"unlocked"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDialogueResponse(dialogue domain.Dialogue) dialogueResponse {
	return dialogueResponse{
		ID:          dialogue.ID,
		CharacterID: dialogue.CharacterID,
		Content:     dialogue.Content,
		QuestID:     dialogue.QuestID,
		PuzzleID:    dialogue.PuzzleID,
		Unlocked:    dialogue.Unlocked,
		CreatedAt:   dialogue.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   dialogue.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type puzzleResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Complexity  int      `json:"complexity"`
	Solution    string   `json:"solution"`
	Hints       []string `json:"hints"`
	Completed   bool     `json:"completed"`
	Unlocked    bool     `json:"unlocked"`
	QuestID     string   `json:"quest_id,omitempty"`
	DialogueID  string   `json:"dialogue_id,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func toPuzzleResponse(puzzle domain.Puzzle) puzzleResponse {
	hints := puzzle.Hints
	if hints == nil {
		hints = []string{}
	}
	return puzzleResponse{
		ID:          puzzle.ID,
		Title:       puzzle.Title,
		Description: puzzle.Description,
		Complexity:  puzzle.Complexity,
		Solution:    puzzle.Solution,
		Hints:       hints,
		Completed:   puzzle.Completed,
		Unlocked:    puzzle.Unlocked,
		QuestID:     puzzle.QuestID,
		DialogueID:  puzzle.DialogueID,
		CreatedAt:   puzzle.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   puzzle.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type sessionResponse struct {
	ID              string   `json:"id"`
	HostCharacterID string   `json:"host_character_id"`
	Participants    []string `json:"participants"`
	SessionType     string   `json:"session_type"`
	Settings        string   `json:"settings,omitempty"`
	GameState       string   `json:"game_state,omitempty"`
	IsActive        bool     `json:"is_active"`
	Version         uint64   `json:"version"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func toSessionResponse(session domain.Session) sessionResponse {
	participants := session.Participants
	if participants == nil {
		participants = []string{}
	}
	return sessionResponse{
		ID:              session.ID,
		HostCharacterID: session.HostCharacterID,
		Participants:    participants,
		SessionType:     session.SessionType,
		Settings:        session.SettingsJSON,
		GameState:       session.GameState,
		IsActive:        session.IsActive,
		Version:         session.Version,
		CreatedAt:       session.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       session.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type recipeResponse struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Ingredients       map[string]int `json:"ingredients"`
	ResultItemType    string         `json:"result_item_type"`
	ResultItemName    string         `json:"result_item_name"`
	ResultDescription string         `json:"result_description,omitempty"`
}

func toRecipeResponse(recipe domain.CraftingRecipe) recipeResponse {
	return recipeResponse{
		ID:                recipe.ID,
		Name:              recipe.Name,
		Ingredients:       recipe.Ingredients,
		ResultItemType:    recipe.ResultItemType,
		ResultItemName:    recipe.ResultItemName,
		ResultDescription: recipe.ResultDescription,
	}
}

type effectsAppliedResponse struct {
	Kind      string                 `json:"kind"`
	SourceID  string                 `json:"source_id"`
	Effects   []domain.AppliedEffect `json:"effects"`
	AppliedAt string                 `json:"applied_at"`
	Replayed  bool                   `json:"replayed"`
}

func toEffectsAppliedResponse(result domain.EffectsApplied) effectsAppliedResponse {
	effects := result.Effects
	if effects == nil {
		effects = []domain.AppliedEffect{}
	}
	return effectsAppliedResponse{
		Kind:      string(result.Kind),
		SourceID:  result.SourceID,
		Effects:   effects,
		AppliedAt: result.AppliedAt.UTC().Format(time.RFC3339),
		Replayed:  result.Replayed,
	}
}

type applyUpdateResponse struct {
	SessionID        string                   `json:"session_id"`
	NewVersion       uint64                   `json:"new_version"`
	Participants     []string                 `json:"participants"`
	CharacterChanges []domain.CharacterUpdate `json:"character_changes"`
	InventoryUpdates []domain.InventoryUpdate `json:"inventory_updates"`
	QuestUpdates     []domain.QuestUpdate     `json:"quest_updates"`
}

// toApplyUpdateResponse echoes the applied deltas back so clients can
// broadcast them to the other session participants.
func toApplyUpdateResponse(result service.ApplyUpdateResult) applyUpdateResponse {
	participants := result.Participants
	if participants == nil {
		participants = []string{}
	}
	characterChanges := result.Applied.CharacterChanges
	if characterChanges == nil {
		characterChanges = []domain.CharacterUpdate{}
	}
	inventoryUpdates := result.Applied.InventoryUpdates
	if inventoryUpdates == nil {
		inventoryUpdates = []domain.InventoryUpdate{}
	}
	questUpdates := result.Applied.QuestUpdates
	if questUpdates == nil {
		questUpdates = []domain.QuestUpdate{}
	}
	return applyUpdateResponse{
		SessionID:        result.SessionID,
		NewVersion:       result.NewVersion,
		Participants:     participants,
		CharacterChanges: characterChanges,
		InventoryUpdates: inventoryUpdates,
		QuestUpdates:     questUpdates,
	}
}
