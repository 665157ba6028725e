package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tabshare/tabshare/internal/service"
	"github.com/tabshare/tabshare/internal/storage"
)

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps typed service/storage errors onto status codes:
// 404 for missing references, 409 for lost uniqueness races, 422 for
// operations outside their lifecycle window.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case storage.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyClaimed) || storage.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSessionNotDraft),
		errors.Is(err, service.ErrSessionNotOpen),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNoItems):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Unhandled service error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
