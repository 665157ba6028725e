package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleJoin binds a device fingerprint to a member. A first join answers
// 201; a repeated join from the same device answers 200 with the existing
// member unchanged.
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	member, created, err := h.members.Join(r.Context(), sessionID, req.Fingerprint, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, toMemberResponse(*member))
}

// handleSetPaid flips a member's settled-up flag.
func (h *Handler) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	memberID := chi.URLParam(r, "memberID")

	var req paidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return
	}

	member, err := h.members.SetPaid(r.Context(), sessionID, memberID, req.Paid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMemberResponse(*member))
}
