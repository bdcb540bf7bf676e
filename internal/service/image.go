package service

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"strings"

	// Register decoders for upload validation.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
)

// ImageStore persists uploaded image binaries and removes stored ones.
type ImageStore interface {
	// Save writes the payload under a freshly generated path, preserving
	// only the extension, and returns the stored path.
	Save(ext string, data []byte) (string, error)
	// Remove deletes the stored file; missing files are not an error.
	Remove(path string) error
}

// ImageService attaches uploaded images to recipes.
type ImageService struct {
	recipes RecipeRepository
	store   ImageStore
}

// NewImageService constructs an ImageService using the provided repository
// and store.
func NewImageService(recipes RecipeRepository, store ImageStore) *ImageService {
	return &ImageService{recipes: recipes, store: store}
}

// Attach validates the payload as a decodable image, stores it, and points
// the user's recipe at the new path, removing any prior file. On validation
// failure the prior image is left untouched.
func (s *ImageService) Attach(ctx context.Context, user *models.User, recipeID int64, filename string, data []byte) (*models.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, user.ID, recipeID)
	if err != nil {
		return nil, err
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, apperr.Invalid("image", "upload a valid image")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path, err := s.store.Save(ext, data)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.SetImage(ctx, user.ID, recipeID, path); err != nil {
		// The row vanished between reads; drop the orphaned file.
		_ = s.store.Remove(path)
		return nil, err
	}
	if rec.Image != "" {
		_ = s.store.Remove(rec.Image)
	}
	rec.Image = path
	return rec, nil
}

// Remove deletes the recipe's stored image and clears the reference.
// Returns the current state unchanged when no image is set.
func (s *ImageService) Remove(ctx context.Context, user *models.User, recipeID int64) (*models.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, user.ID, recipeID)
	if err != nil {
		return nil, err
	}
	if rec.Image == "" {
		return rec, nil
	}
	if err := s.recipes.SetImage(ctx, user.ID, recipeID, ""); err != nil {
		return nil, err
	}
	_ = s.store.Remove(rec.Image)
	rec.Image = ""
	return rec, nil
}
