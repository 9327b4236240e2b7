package rest

import (
	"net/http"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/platform/httpx"
)

type createPuzzleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Complexity  int    `json:"complexity"`
	Solution    string `json:"solution"`
	QuestID     string `json:"quest_id"`
	DialogueID  string `json:"dialogue_id"`
}

type updatePuzzleRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Complexity  *int     `json:"complexity"`
	Solution    *string  `json:"solution"`
	Hints       []string `json:"hints"`
}

func (h *Handler) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req createPuzzleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	puzzle, err := h.svc.CreatePuzzle(httpx.RequestContext(r), domain.CreatePuzzleInput{
		Title:       req.Title,
		Description: req.Description,
		Complexity:  req.Complexity,
		Solution:    req.Solution,
		QuestID:     req.QuestID,
		DialogueID:  req.DialogueID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toPuzzleResponse(puzzle))
}

func (h *Handler) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	puzzle, err := h.svc.GetPuzzle(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toPuzzleResponse(puzzle))
}

func (h *Handler) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPuzzles(httpx.RequestContext(r), service.ListPuzzlesInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  queryInt(r, "page_size"),
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	puzzles := make([]puzzleResponse, 0, len(result.Puzzles))
	for _, puzzle := range result.Puzzles {
		puzzles = append(puzzles, toPuzzleResponse(puzzle))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"puzzles":         puzzles,
		"next_page_token": result.NextPageToken,
	})
}

func (h *Handler) handleUpdatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req updatePuzzleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	puzzle, err := h.svc.UpdatePuzzle(httpx.RequestContext(r), service.UpdatePuzzleInput{
		PuzzleID:    r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		Complexity:  req.Complexity,
		Solution:    req.Solution,
		Hints:       req.Hints,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toPuzzleResponse(puzzle))
}

func (h *Handler) handleDeletePuzzle(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePuzzle(httpx.RequestContext(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCompletePuzzle(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.MarkPuzzleCompleted(httpx.RequestContext(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toEffectsAppliedResponse(result))
}
