package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type createQuestRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Narrative     string   `json:"narrative"`
	RequiredItems []string `json:"required_items"`
}

type updateQuestRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Narrative     *string  `json:"narrative"`
	RequiredItems []string `json:"required_items"`
	IsActive      *bool    `json:"is_active"`
}

func (h *Handler) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req createQuestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	quest, err := h.svc.CreateQuest(httpx.RequestContext(r), domain.CreateQuestInput{
		Name:          req.Name,
		Description:   req.Description,
		Narrative:     req.Narrative,
		RequiredItems: req.RequiredItems,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toQuestResponse(quest))
}

func (h *Handler) handleGetQuest(w http.ResponseWriter, r *http.Request) {
	quest, err := h.svc.GetQuest(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toQuestResponse(quest))
}

func (h *Handler) handleListQuests(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListQuests(httpx.RequestContext(r), service.ListQuestsInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  queryInt(r, "page_size"),
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	quests := make([]questResponse, 0, len(result.Quests))
	for _, quest := range result.Quests {
		quests = append(quests, toQuestResponse(quest))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"quests":          quests,
		"next_page_token": result.NextPageToken,
	})
}

func (h *Handler) handleUpdateQuest(w http.ResponseWriter, r *http.Request) {
	var req updateQuestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	quest, err := h.svc.UpdateQuest(httpx.RequestContext(r), service.UpdateQuestInput{
		QuestID:       r.PathValue("id"),
		Name:          req.Name,
		Description:   req.Description,
		Narrative:     req.Narrative,
		RequiredItems: req.RequiredItems,
		IsActive:      req.IsActive,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toQuestResponse(quest))
}

func (h *Handler) handleDeleteQuest(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuest(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
