// Package rest exposes the game engine over a JSON HTTP API.
package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

// Handler serves the REST routes for the game engine.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a Handler over one engine service.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires every route into the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if mux == nil || h == nil {
		return
	}

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /api/characters", h.handleCreateCharacter)
	mux.HandleFunc("GET /api/characters", h.handleListCharacters)
	mux.HandleFunc("GET /api/characters/{id}", h.handleGetCharacter)
	mux.HandleFunc("PATCH /api/characters/{id}", h.handleUpdateCharacter)
	mux.HandleFunc("DELETE /api/characters/{id}", h.handleDeleteCharacter)
	mux.HandleFunc("GET /api/characters/{id}/inventory", h.handleGetInventory)

	mux.HandleFunc("POST /api/items", h.handleAddItem)
	mux.HandleFunc("GET /api/items/{id}", h.handleGetItem)
	mux.HandleFunc("PATCH /api/items/{id}", h.handleUpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.handleRemoveItem)

	mux.HandleFunc("POST /api/quests", h.handleCreateQuest)
	mux.HandleFunc("GET /api/quests", h.handleListQuests)
	mux.HandleFunc("GET /api/quests/{id}", h.handleGetQuest)
	mux.HandleFunc("PATCH /api/quests/{id}", h.handleUpdateQuest)
	mux.HandleFunc("DELETE /api/quests/{id}", h.handleDeleteQuest)

	mux.HandleFunc("POST /api/dialogues", h.handleCreateDialogue)
	mux.HandleFunc("GET /api/dialogues", h.handleListDialogues)
	mux.HandleFunc("GET /api/dialogues/{id}", h.handleGetDialogue)
	mux.HandleFunc("PATCH /api/dialogues/{id}", h.handleUpdateDialogue)
	mux.HandleFunc("DELETE /api/dialogues/{id}", h.handleDeleteDialogue)
	mux.HandleFunc("POST /api/dialogues/{id}/trigger", h.handleTriggerDialogue)

	mux.HandleFunc("POST /api/puzzles", h.handleCreatePuzzle)
	mux.HandleFunc("GET /api/puzzles", h.handleListPuzzles)
	mux.HandleFunc("GET /api/puzzles/{id}", h.handleGetPuzzle)
	mux.HandleFunc("PATCH /api/puzzles/{id}", h.handleUpdatePuzzle)
	mux.HandleFunc("DELETE /api/puzzles/{id}", h.handleDeletePuzzle)
	mux.HandleFunc("POST /api/puzzles/{id}/complete", h.handleCompletePuzzle)

	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("PATCH /api/sessions/{id}", h.handleUpdateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/state", h.handleApplyUpdate)

	mux.HandleFunc("POST /api/craft", h.handleCraftItem)
	mux.HandleFunc("GET /api/recipes", h.handleListRecipes)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
