package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type createSessionRequest struct {
	HostCharacterID string   `json:"host_character_id"`
	Participants    []string `json:"participants"`
	SessionType     string   `json:"session_type"`
	Settings        string   `json:"settings"`
}

type updateSessionRequest struct {
	Participants []string `json:"participants"`
	GameState    *string  `json:"game_state"`
	IsActive     *bool    `json:"is_active"`
}

type applyUpdateRequest struct {
	ExpectedVersion  uint64                   `json:"expected_version"`
	CharacterChanges []domain.CharacterUpdate `json:"character_changes"`
	InventoryUpdates []domain.InventoryUpdate `json:"inventory_updates"`
	QuestUpdates     []domain.QuestUpdate     `json:"quest_updates"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	session, err := h.svc.CreateSession(httpx.RequestContext(r), domain.CreateSessionInput{
		HostCharacterID:         req.HostCharacterID,
		ParticipantCharacterIDs: req.Participants,
		SessionType:             req.SessionType,
		SettingsJSON:            req.Settings,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSessions(httpx.RequestContext(r), service.ListSessionsInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  queryInt(r, "page_size"),
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	sessions := make([]sessionResponse, 0, len(result.Sessions))
	for _, session := range result.Sessions {
		sessions = append(sessions, toSessionResponse(session))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"sessions":        sessions,
		"next_page_token": result.NextPageToken,
	})
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	session, err := h.svc.UpdateSession(httpx.RequestContext(r), service.UpdateSessionInput{
		SessionID:    r.PathValue("id"),
		Participants: req.Participants,
		GameState:    req.GameState,
		IsActive:     req.IsActive,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApplyUpdate(w http.ResponseWriter, r *http.Request) {
	var req applyUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	result, err := h.svc.ApplyUpdate(httpx.RequestContext(r), domain.StateUpdateBatch{
		SessionID:        r.PathValue("id"),
		ExpectedVersion:  req.ExpectedVersion,
		CharacterChanges: req.CharacterChanges,
		InventoryUpdates: req.InventoryUpdates,
		QuestUpdates:     req.QuestUpdates,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toApplyUpdateResponse(result))
}
