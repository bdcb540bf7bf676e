// Package http provides the HTTP handlers and routing for the recipe API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/RecipeVault/internal/apperr"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto the HTTP error contract:
// field validation errors become 400 with per-field detail, authentication
// failures 401, unknown or foreign ids 404, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "authentication required"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

// badRequest writes a 400 with a single non-field message.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"errors": map[string][]string{"non_field_errors": {msg}},
	})
}
