package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/middleware"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/atinyakov/RecipeVault/internal/repository"
	"github.com/atinyakov/RecipeVault/internal/service"
)

// maxUploadBytes caps in-memory multipart parsing for image uploads.
const maxUploadBytes = 32 << 20

// RecipeService defines the recipe operations required by the handlers.
type RecipeService interface {
	// List returns the user's recipes restricted by the filter.
	List(ctx context.Context, user *models.User, filter repository.RecipeFilter) ([]models.Recipe, error)
	// Get returns the detail view with expanded tag/ingredient objects.
	Get(ctx context.Context, user *models.User, id int64) (*models.RecipeDetail, error)
	// Create inserts a recipe stamped with the caller as owner.
	Create(ctx context.Context, user *models.User, input service.RecipeInput) (*models.Recipe, error)
	// Replace overwrites the recipe; absent relationship fields clear links.
	Replace(ctx context.Context, user *models.User, id int64, input service.RecipeInput) (*models.RecipeDetail, error)
	// Patch applies the non-nil fields of the patch.
	Patch(ctx context.Context, user *models.User, id int64, patch service.RecipePatch) (*models.RecipeDetail, error)
	// Delete removes the user's recipe.
	Delete(ctx context.Context, user *models.User, id int64) error
}

// ImageService defines the image attachment operations required by the
// handlers.
type ImageService interface {
	// Attach validates and stores the payload, replacing any prior image.
	Attach(ctx context.Context, user *models.User, recipeID int64, filename string, data []byte) (*models.Recipe, error)
	// Remove deletes the stored image and clears the reference.
	Remove(ctx context.Context, user *models.User, recipeID int64) (*models.Recipe, error)
}

// RecipeHandler handles recipe collection, detail, and image requests.
type RecipeHandler struct {
	RecipeService RecipeService
	ImageService  ImageService
}

// RecipeRequest is the JSON payload for creating or replacing a recipe.
type RecipeRequest struct {
	Title         string       `json:"title"`
	TimeMinutes   int          `json:"time_minutes"`
	Price         models.Price `json:"price"`
	Link          string       `json:"link"`
	TagIDs        []int64      `json:"tags"`
	IngredientIDs []int64      `json:"ingredients"`
}

// RecipePatchRequest is the JSON payload for partial updates; absent
// fields are left unchanged.
type RecipePatchRequest struct {
	Title         *string       `json:"title"`
	TimeMinutes   *int          `json:"time_minutes"`
	Price         *models.Price `json:"price"`
	Link          *string       `json:"link"`
	TagIDs        *[]int64      `json:"tags"`
	IngredientIDs *[]int64      `json:"ingredients"`
}

// List handles GET /recipe/recipes. The tags and ingredients query
// parameters hold comma-separated id lists; a recipe matches when its set
// intersects the tag ids and, independently, the ingredient ids.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var filter repository.RecipeFilter
	var err error
	if filter.TagIDs, err = parseIDList(r.URL.Query().Get("tags")); err != nil {
		writeError(w, apperr.Invalid("tags", "expected a comma-separated list of ids"))
		return
	}
	if filter.IngredientIDs, err = parseIDList(r.URL.Query().Get("ingredients")); err != nil {
		writeError(w, apperr.Invalid("ingredients", "expected a comma-separated list of ids"))
		return
	}

	recipes, err := h.RecipeService.List(r.Context(), user, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Create handles POST /recipe/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	rec, err := h.RecipeService.Create(r.Context(), user, recipeInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Get handles GET /recipe/recipes/{id}, returning nested tag and
// ingredient objects.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	detail, err := h.RecipeService.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Replace handles PUT /recipe/recipes/{id}. A payload without tags or
// ingredients clears those links: replace semantics, not merge.
func (h *RecipeHandler) Replace(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	detail, err := h.RecipeService.Replace(r.Context(), user, id, recipeInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Patch handles PATCH /recipe/recipes/{id}.
func (h *RecipeHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req RecipePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	patch := service.RecipePatch{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	}
	detail, err := h.RecipeService.Patch(r.Context(), user, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /recipe/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.RecipeService.Delete(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /recipe/recipes/{id}/upload-image with a
// multipart "image" field.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperr.Invalid("image", "expected multipart form data"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.Invalid("image", "no file was submitted"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Invalid("image", "could not read uploaded file"))
		return
	}
	rec, err := h.ImageService.Attach(r.Context(), user, id, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RemoveImage handles DELETE /recipe/recipes/{id}/upload-image.
func (h *RecipeHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rec, err := h.ImageService.Remove(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// recipeInput converts the wire payload to the service input shape.
func recipeInput(req RecipeRequest) service.RecipeInput {
	return service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	}
}

// parseIDList parses a comma-separated id list; empty input yields nil.
func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
