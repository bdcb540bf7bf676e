package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atinyakov/RecipeVault/internal/middleware"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/go-chi/chi/v5"
)

// AttributeService defines the operations required by the attribute
// handlers. One implementation serves both tags and ingredients.
type AttributeService interface {
	// List returns the user's attributes sorted by name descending.
	List(ctx context.Context, user *models.User, assignedOnly bool) ([]models.Attribute, error)
	// Create adds a new attribute owned by the user.
	Create(ctx context.Context, user *models.User, name string) (*models.Attribute, error)
	// Rename changes the name of the user's attribute.
	Rename(ctx context.Context, user *models.User, id int64, name string) (*models.Attribute, error)
	// Delete removes the user's attribute.
	Delete(ctx context.Context, user *models.User, id int64) error
}

// AttributeHandler serves one attribute entity (tags or ingredients).
// The same handler code is mounted twice with different services.
type AttributeHandler struct {
	Service AttributeService
}

// AttributeRequest is the JSON payload for creating or renaming an
// attribute.
type AttributeRequest struct {
	Name string `json:"name"`
}

// List handles GET on the collection. The assigned_only query parameter
// restricts results to attributes linked to at least one recipe.
func (h *AttributeHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	assignedOnly := isTruthy(r.URL.Query().Get("assigned_only"))

	attrs, err := h.Service.List(r.Context(), user, assignedOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attrs)
}

// Create handles POST on the collection.
func (h *AttributeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req AttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	attr, err := h.Service.Create(r.Context(), user, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attr)
}

// Update handles PATCH on a single attribute.
func (h *AttributeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req AttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	attr, err := h.Service.Rename(r.Context(), user, id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attr)
}

// Delete handles DELETE on a single attribute.
func (h *AttributeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// idParam parses the {id} URL parameter, writing a 404 on garbage.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		return 0, false
	}
	return id, true
}

// isTruthy interprets a query parameter flag.
func isTruthy(s string) bool {
	return s == "1" || s == "true" || s == "True"
}
