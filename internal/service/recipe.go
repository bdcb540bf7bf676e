package service

import (
	"context"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/atinyakov/RecipeVault/internal/repository"
)

// RecipeRepository defines the persistence operations required by
// RecipeService and ImageService.
type RecipeRepository interface {
	// ListByOwner returns the user's recipes restricted by the filter.
	ListByOwner(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]models.Recipe, error)
	// GetByID returns the user's recipe with its link ids.
	GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error)
	// Create inserts the recipe and its links.
	Create(ctx context.Context, rec *models.Recipe) (*models.Recipe, error)
	// Update replaces the recipe row and its full link membership.
	Update(ctx context.Context, rec *models.Recipe) error
	// Delete removes the user's recipe.
	Delete(ctx context.Context, userID, id int64) error
	// SetImage records the stored image path; empty clears it.
	SetImage(ctx context.Context, userID, id int64, path string) error
}

// RecipeAttributeRepository is the slice of the attribute store that
// RecipeService needs: resolving linked attribute objects and verifying
// link ownership.
type RecipeAttributeRepository interface {
	// ListByRecipe returns the attributes linked to the user's recipe.
	ListByRecipe(ctx context.Context, userID, recipeID int64) ([]models.Attribute, error)
	// CountOwned returns how many of the ids exist and belong to the user.
	CountOwned(ctx context.Context, userID int64, ids []int64) (int64, error)
}

// RecipeInput is the full payload for creating or replacing a recipe.
// Absent relationship fields mean empty sets (replace semantics).
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         models.Price
	Link          string
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipePatch is a partial update; nil fields are left unchanged.
type RecipePatch struct {
	Title         *string
	TimeMinutes   *int
	Price         *models.Price
	Link          *string
	TagIDs        *[]int64
	IngredientIDs *[]int64
}

// RecipeService implements owner-scoped recipe operations.
type RecipeService struct {
	recipes     RecipeRepository
	tags        RecipeAttributeRepository
	ingredients RecipeAttributeRepository
}

// NewRecipeService constructs a RecipeService using the provided
// repositories.
func NewRecipeService(recipes RecipeRepository, tags, ingredients RecipeAttributeRepository) *RecipeService {
	return &RecipeService{recipes: recipes, tags: tags, ingredients: ingredients}
}

// List returns the user's recipes, restricted to those linked to any of the
// filter's tag ids and any of its ingredient ids.
func (s *RecipeService) List(ctx context.Context, user *models.User, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return s.recipes.ListByOwner(ctx, user.ID, filter)
}

// Get returns the detail view of the user's recipe, with linked tags and
// ingredients expanded into objects.
func (s *RecipeService) Get(ctx context.Context, user *models.User, id int64) (*models.RecipeDetail, error) {
	rec, err := s.recipes.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, user, rec)
}

// Create validates the input, verifies link ownership, and inserts the
// recipe stamped with the caller as owner.
func (s *RecipeService) Create(ctx context.Context, user *models.User, input RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, user, input); err != nil {
		return nil, err
	}
	rec := &models.Recipe{
		UserID:        user.ID,
		Title:         input.Title,
		TimeMinutes:   input.TimeMinutes,
		Price:         input.Price,
		Link:          input.Link,
		TagIDs:        dedupe(input.TagIDs),
		IngredientIDs: dedupe(input.IngredientIDs),
	}
	return s.recipes.Create(ctx, rec)
}

// Replace overwrites the user's recipe with the input. Relationship fields
// absent from the input clear the corresponding links.
func (s *RecipeService) Replace(ctx context.Context, user *models.User, id int64, input RecipeInput) (*models.RecipeDetail, error) {
	if err := s.validate(ctx, user, input); err != nil {
		return nil, err
	}
	rec := &models.Recipe{
		ID:            id,
		UserID:        user.ID,
		Title:         input.Title,
		TimeMinutes:   input.TimeMinutes,
		Price:         input.Price,
		Link:          input.Link,
		TagIDs:        dedupe(input.TagIDs),
		IngredientIDs: dedupe(input.IngredientIDs),
	}
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.Get(ctx, user, id)
}

// Patch applies the non-nil fields of the patch to the user's recipe.
// A present relationship field fully replaces membership.
func (s *RecipeService) Patch(ctx context.Context, user *models.User, id int64, patch RecipePatch) (*models.RecipeDetail, error) {
	rec, err := s.recipes.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.TimeMinutes != nil {
		rec.TimeMinutes = *patch.TimeMinutes
	}
	if patch.Price != nil {
		rec.Price = *patch.Price
	}
	if patch.Link != nil {
		rec.Link = *patch.Link
	}
	if patch.TagIDs != nil {
		rec.TagIDs = dedupe(*patch.TagIDs)
	}
	if patch.IngredientIDs != nil {
		rec.IngredientIDs = dedupe(*patch.IngredientIDs)
	}

	input := RecipeInput{
		Title:         rec.Title,
		TimeMinutes:   rec.TimeMinutes,
		Price:         rec.Price,
		Link:          rec.Link,
		TagIDs:        rec.TagIDs,
		IngredientIDs: rec.IngredientIDs,
	}
	if err := s.validate(ctx, user, input); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.Get(ctx, user, id)
}

// Delete removes the user's recipe.
func (s *RecipeService) Delete(ctx context.Context, user *models.User, id int64) error {
	return s.recipes.Delete(ctx, user.ID, id)
}

// validate checks field shape and that every linked id belongs to the user.
func (s *RecipeService) validate(ctx context.Context, user *models.User, input RecipeInput) error {
	ve := &apperr.ValidationError{}
	if input.Title == "" {
		ve.Add("title", "this field may not be blank")
	}
	if input.TimeMinutes < 0 {
		ve.Add("time_minutes", "ensure this value is greater than or equal to 0")
	}
	if input.Price < 0 {
		ve.Add("price", "ensure this value is greater than or equal to 0")
	}

	tagIDs := dedupe(input.TagIDs)
	if len(tagIDs) > 0 {
		owned, err := s.tags.CountOwned(ctx, user.ID, tagIDs)
		if err != nil {
			return err
		}
		if owned != int64(len(tagIDs)) {
			ve.Add("tags", "invalid tag id")
		}
	}
	ingredientIDs := dedupe(input.IngredientIDs)
	if len(ingredientIDs) > 0 {
		owned, err := s.ingredients.CountOwned(ctx, user.ID, ingredientIDs)
		if err != nil {
			return err
		}
		if owned != int64(len(ingredientIDs)) {
			ve.Add("ingredients", "invalid ingredient id")
		}
	}

	if ve.Empty() {
		return nil
	}
	return ve
}

// detail expands a recipe's link ids into attribute objects.
func (s *RecipeService) detail(ctx context.Context, user *models.User, rec *models.Recipe) (*models.RecipeDetail, error) {
	tags, err := s.tags.ListByRecipe(ctx, user.ID, rec.ID)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.ingredients.ListByRecipe(ctx, user.ID, rec.ID)
	if err != nil {
		return nil, err
	}
	return &models.RecipeDetail{
		ID:          rec.ID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price,
		Link:        rec.Link,
		Image:       rec.Image,
		Tags:        tags,
		Ingredients: ingredients,
	}, nil
}

// dedupe removes duplicate ids, preserving first-seen order.
func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
