package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleClaim records a member's claim on an item. A losing race under
// the exclusive policy answers 409 so the client rolls back its
// optimistic update.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID := chi.URLParam(r, "itemID")

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "malformed payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	claim, err := h.claims.Claim(r.Context(), sessionID, itemID, req.MemberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, claimResponse{
		ItemID:    claim.ItemID,
		MemberID:  claim.MemberID,
		CreatedAt: claim.CreatedAt,
	})
}

// handleUnclaim releases a claim; unclaiming an unheld item still answers
// 204, matching the idempotent contract.
func (h *Handler) handleUnclaim(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID := chi.URLParam(r, "itemID")
	memberID := chi.URLParam(r, "memberID")

	if err := h.claims.Unclaim(r.Context(), sessionID, itemID, memberID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
