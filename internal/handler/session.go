package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/service"
)

// handleCreateSession materializes a draft session from the ingestion
// pipeline's validated output.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Tax.IsNegative() || req.Tip.IsNegative() {
		respondError(w, http.StatusUnprocessableEntity, "tax and tip must be non-negative")
		return
	}

	in := service.CreateInput{
		Title:    req.Title,
		Currency: req.Currency,
		Tax:      req.Tax,
		Tip:      req.Tip,
	}
	for _, item := range req.Items {
		if item.Price.IsNegative() {
			respondError(w, http.StatusUnprocessableEntity, "item price must be non-negative")
			return
		}
		in.Items = append(in.Items, service.ItemInput{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	session, err := h.sessions.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, settlements, summary, err := h.sessions.Get(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(session, settlements, summary))
}

// handleGetSession returns the full session graph plus the settlement
// computed from the current claim set.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, settlements, summary, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session, settlements, summary))
}

// handleTransition advances the lifecycle state machine.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.sessions.Transition(r.Context(), sessionID, models.Status(req.To)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": req.To})
}

// handleAddItem appends an item during draft review.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	in, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.sessions.AddItem(r.Context(), sessionID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toItemResponse(*item))
}

// handleUpdateItem re-prices or renames an item during draft review.
func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID := chi.URLParam(r, "itemID")

	in, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.sessions.UpdateItem(r.Context(), sessionID, itemID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(*item))
}

// handleRemoveItem deletes an item during draft review.
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID := chi.URLParam(r, "itemID")

	if err := h.sessions.RemoveItem(r.Context(), sessionID, itemID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeItem(w http.ResponseWriter, r *http.Request) (service.ItemInput, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return service.ItemInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return service.ItemInput{}, false
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusUnprocessableEntity, "item price must be non-negative")
		return service.ItemInput{}, false
	}
	return service.ItemInput{Name: req.Name, Price: req.Price, Quantity: req.Quantity}, true
}
