package service

import (
	"context"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
)

// AttributeRepository defines the persistence operations required by
// AttributeService. One implementation serves both tags and ingredients.
type AttributeRepository interface {
	// ListByOwner returns the user's attributes, optionally restricted to
	// those linked to at least one of the user's recipes.
	ListByOwner(ctx context.Context, userID int64, assignedOnly bool) ([]models.Attribute, error)
	// Create inserts a new attribute owned by the user.
	Create(ctx context.Context, userID int64, name string) (*models.Attribute, error)
	// UpdateName renames the user's attribute and returns the updated row.
	UpdateName(ctx context.Context, userID, id int64, name string) (*models.Attribute, error)
	// Delete removes the user's attribute.
	Delete(ctx context.Context, userID, id int64) error
}

// AttributeService implements owner-scoped tag or ingredient operations.
type AttributeService struct {
	repo AttributeRepository
}

// NewAttributeService constructs an AttributeService using the provided
// repository.
func NewAttributeService(repo AttributeRepository) *AttributeService {
	return &AttributeService{repo: repo}
}

// List returns the user's attributes sorted by name descending, restricted
// to recipe-assigned ones when assignedOnly is set.
func (s *AttributeService) List(ctx context.Context, user *models.User, assignedOnly bool) ([]models.Attribute, error) {
	return s.repo.ListByOwner(ctx, user.ID, assignedOnly)
}

// Create adds a new attribute owned by the user. The name must be non-empty.
func (s *AttributeService) Create(ctx context.Context, user *models.User, name string) (*models.Attribute, error) {
	if name == "" {
		return nil, apperr.Invalid("name", "this field may not be blank")
	}
	return s.repo.Create(ctx, user.ID, name)
}

// Rename changes the name of the user's attribute.
func (s *AttributeService) Rename(ctx context.Context, user *models.User, id int64, name string) (*models.Attribute, error) {
	if name == "" {
		return nil, apperr.Invalid("name", "this field may not be blank")
	}
	return s.repo.UpdateName(ctx, user.ID, id, name)
}

// Delete removes the user's attribute.
func (s *AttributeService) Delete(ctx context.Context, user *models.User, id int64) error {
	return s.repo.Delete(ctx, user.ID, id)
}
