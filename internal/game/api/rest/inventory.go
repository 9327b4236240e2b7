package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type addItemRequest struct {
	CharacterID string `json:"character_id"`
	ItemType    string `json:"item_type"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity"`
	Status   *string `json:"status"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	item, err := h.svc.AddItem(httpx.RequestContext(r), domain.CreateItemInput{
		CharacterID: req.CharacterID,
		ItemType:    req.ItemType,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetItem(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.GetInventoryItems(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": responses})
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	item, err := h.svc.UpdateInventoryItem(httpx.RequestContext(r), service.UpdateItemInput{
		ItemID:   r.PathValue("id"),
		Quantity: req.Quantity,
		Status:   req.Status,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveItem(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
