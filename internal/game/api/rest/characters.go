package rest

import (
	"net/http"
	"strconv"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type createCharacterRequest struct {
	Name            string `json:"name"`
	PlayerProfileID string `json:"player_profile_id"`
	Customization   string `json:"customization"`
}

type updateCharacterRequest struct {
	Name          *string `json:"name"`
	Appearance    *string `json:"appearance"`
	Customization *string `json:"customization"`
}

func (h *Handler) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	character, err := h.svc.CreateCharacter(httpx.RequestContext(r), domain.CreateCharacterInput{
		Name:              req.Name,
		PlayerProfileID:   req.PlayerProfileID,
		CustomizationJSON: req.Customization,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toCharacterResponse(character))
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	character, err := h.svc.GetCharacter(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toCharacterResponse(character))
}

func (h *Handler) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCharacters(httpx.RequestContext(r), service.ListCharactersInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  queryInt(r, "page_size"),
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	characters := make([]characterResponse, 0, len(result.Characters))
	for _, character := range result.Characters {
		characters = append(characters, toCharacterResponse(character))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"characters":      characters,
		"next_page_token": result.NextPageToken,
	})
}

func (h *Handler) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var req updateCharacterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	character, err := h.svc.UpdateCharacter(httpx.RequestContext(r), service.UpdateCharacterInput{
		CharacterID:       r.PathValue("id"),
		Name:              req.Name,
		Appearance:        req.Appearance,
		CustomizationJSON: req.Customization,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toCharacterResponse(character))
}

func (h *Handler) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCharacter(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}
