package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/middleware"
	"github.com/atinyakov/RecipeVault/internal/models"
)

// UserService defines the account and token operations required by the
// user handlers.
type UserService interface {
	// CreateUser creates an account with a normalized email and hashed
	// password.
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	// Authenticate verifies credentials, returning apperr.ErrUnauthorized
	// on mismatch.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// IssueToken returns the account's token, creating one on first login.
	IssueToken(ctx context.Context, user *models.User) (string, error)
	// UpdateMe updates the caller's name and/or password.
	UpdateMe(ctx context.Context, user *models.User, name, password *string) (*models.User, error)
}

// UserHandler handles account creation, login and profile requests.
type UserHandler struct {
	UserService UserService
}

// CreateUserRequest is the JSON payload for account creation.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Create handles POST /users/create. The created account is returned
// without its credential.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	user, err := h.UserService.CreateUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// TokenRequest is the JSON payload for credential verification.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token handles POST /users/token. Bad credentials yield 400 with no token
// field, matching the validation contract rather than 401: the request was
// well-formed HTTP, the payload failed verification.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	user, err := h.UserService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			badRequest(w, "unable to authenticate with provided credentials")
			return
		}
		writeError(w, err)
		return
	}
	token, err := h.UserService.IssueToken(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me handles GET /users/me for the authenticated account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// UpdateMeRequest is the JSON payload for partial profile updates.
type UpdateMeRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UpdateMe handles PATCH /users/me, updating name and/or password.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated, err := h.UserService.UpdateMe(r.Context(), user, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
