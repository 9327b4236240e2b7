package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type craftItemRequest struct {
	ItemIDs []string `json:"item_ids"`
}

func (h *Handler) handleCraftItem(w http.ResponseWriter, r *http.Request) {
	var req craftItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	item, err := h.svc.CraftItem(httpx.RequestContext(r), req.ItemIDs)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.ListRecipes(httpx.RequestContext(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	out := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, toRecipeResponse(recipe))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"recipes": out})
}
