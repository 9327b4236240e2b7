package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type createDialogueRequest struct {
	CharacterID string `json:"character_id"`
	Content     string `json:"content"`
	QuestID     string `json:"quest_id"`
	PuzzleID    string `json:"puzzle_id"`
}

type updateDialogueRequest struct {
	CharacterID *string `json:"character_id"`
	Content     *string `json:"content"`
	QuestID     *string `json:"quest_id"`
	PuzzleID    *string `json:"puzzle_id"`
}

func (h *Handler) handleCreateDialogue(w http.ResponseWriter, r *http.Request) {
	var req createDialogueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	dialogue, err := h.svc.CreateDialogue(httpx.RequestContext(r), domain.CreateDialogueInput{
		CharacterID: req.CharacterID,
		Content:     req.Content,
		QuestID:     req.QuestID,
		PuzzleID:    req.PuzzleID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toDialogueResponse(dialogue))
}

func (h *Handler) handleGetDialogue(w http.ResponseWriter, r *http.Request) {
	dialogue, err := h.svc.GetDialogue(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toDialogueResponse(dialogue))
}

func (h *Handler) handleListDialogues(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListDialogues(httpx.RequestContext(r), service.ListDialoguesInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  queryInt(r, "page_size"),
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	dialogues := make([]dialogueResponse, 0, len(result.Dialogues))
	for _, dialogue := range result.Dialogues {
		dialogues = append(dialogues, toDialogueResponse(dialogue))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"dialogues":       dialogues,
		"next_page_token": result.NextPageToken,
	})
}

func (h *Handler) handleUpdateDialogue(w http.ResponseWriter, r *http.Request) {
	var req updateDialogueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	dialogue, err := h.svc.UpdateDialogue(httpx.RequestContext(r), service.UpdateDialogueInput{
		DialogueID:  r.PathValue("id"),
		CharacterID: req.CharacterID,
		Content:     req.Content,
		QuestID:     req.QuestID,
		PuzzleID:    req.PuzzleID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toDialogueResponse(dialogue))
}

func (h *Handler) handleDeleteDialogue(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDialogue(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTriggerDialogue(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.TriggerDialogueEvent(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toEffectsAppliedResponse(result))
}
