package service

import (
	"context"
	"testing"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/atinyakov/RecipeVault/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecipeRepo struct {
	ListByOwnerFunc func(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]models.Recipe, error)
	GetByIDFunc     func(ctx context.Context, userID, id int64) (*models.Recipe, error)
	CreateFunc      func(ctx context.Context, rec *models.Recipe) (*models.Recipe, error)
	UpdateFunc      func(ctx context.Context, rec *models.Recipe) error
	DeleteFunc      func(ctx context.Context, userID, id int64) error
	SetImageFunc    func(ctx context.Context, userID, id int64, path string) error
}

func (m *mockRecipeRepo) ListByOwner(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return m.ListByOwnerFunc(ctx, userID, filter)
}
func (m *mockRecipeRepo) GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	return m.GetByIDFunc(ctx, userID, id)
}
func (m *mockRecipeRepo) Create(ctx context.Context, rec *models.Recipe) (*models.Recipe, error) {
	return m.CreateFunc(ctx, rec)
}
func (m *mockRecipeRepo) Update(ctx context.Context, rec *models.Recipe) error {
	return m.UpdateFunc(ctx, rec)
}
func (m *mockRecipeRepo) Delete(ctx context.Context, userID, id int64) error {
	return m.DeleteFunc(ctx, userID, id)
}
func (m *mockRecipeRepo) SetImage(ctx context.Context, userID, id int64, path string) error {
	return m.SetImageFunc(ctx, userID, id, path)
}

// mockLinkRepo answers ownership checks and link expansion. ownedAll makes
// CountOwned report every id as owned by the caller.
type mockLinkRepo struct {
	ownedAll bool
	attrs    []models.Attribute
}

func (m *mockLinkRepo) ListByRecipe(ctx context.Context, userID, recipeID int64) ([]models.Attribute, error) {
	return m.attrs, nil
}
func (m *mockLinkRepo) CountOwned(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if m.ownedAll {
		return int64(len(ids)), nil
	}
	return 0, nil
}

func allOwned() (*mockLinkRepo, *mockLinkRepo) {
	return &mockLinkRepo{ownedAll: true}, &mockLinkRepo{ownedAll: true}
}

func TestRecipeCreate_StampsOwnerAndDedupes(t *testing.T) {
	var created *models.Recipe
	recipes := &mockRecipeRepo{
		CreateFunc: func(ctx context.Context, rec *models.Recipe) (*models.Recipe, error) {
			created = rec
			rec.ID = 11
			return rec, nil
		},
	}
	tags, ingredients := allOwned()
	svc := NewRecipeService(recipes, tags, ingredients)

	input := RecipeInput{
		Title:       "cake",
		TimeMinutes: 30,
		Price:       500,
		TagIDs:      []int64{2, 2, 3},
	}
	rec, err := svc.Create(context.Background(), &models.User{ID: 1}, input)
	require.NoError(t, err)
	assert.Equal(t, int64(11), rec.ID)

	require.NotNil(t, created)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, []int64{2, 3}, created.TagIDs)
}

func TestRecipeCreate_Validation(t *testing.T) {
	tags, ingredients := allOwned()
	svc := NewRecipeService(&mockRecipeRepo{}, tags, ingredients)

	tests := []struct {
		name  string
		input RecipeInput
		field string
	}{
		{name: "blank title", input: RecipeInput{TimeMinutes: 5, Price: 100}, field: "title"},
		{name: "negative time", input: RecipeInput{Title: "x", TimeMinutes: -1}, field: "time_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &models.User{ID: 1}, tt.input)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestRecipeCreate_ForeignTagRejected(t *testing.T) {
	svc := NewRecipeService(&mockRecipeRepo{}, &mockLinkRepo{}, &mockLinkRepo{ownedAll: true})

	input := RecipeInput{Title: "cake", TagIDs: []int64{99}}
	_, err := svc.Create(context.Background(), &models.User{ID: 1}, input)
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "tags")
}

func TestRecipeReplace_ClearsLinksWhenAbsent(t *testing.T) {
	var updated *models.Recipe
	recipes := &mockRecipeRepo{
		UpdateFunc: func(ctx context.Context, rec *models.Recipe) error {
			updated = rec
			return nil
		},
		GetByIDFunc: func(ctx context.Context, userID, id int64) (*models.Recipe, error) {
			return &models.Recipe{ID: id, UserID: userID, Title: "cake"}, nil
		},
	}
	tags, ingredients := allOwned()
	svc := NewRecipeService(recipes, tags, ingredients)

	// PUT payload carried no tags and no ingredients.
	input := RecipeInput{Title: "cake", TimeMinutes: 30, Price: 500}
	_, err := svc.Replace(context.Background(), &models.User{ID: 1}, 11, input)
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Empty(t, updated.TagIDs)
	assert.Empty(t, updated.IngredientIDs)
}

func TestRecipePatch_ReplacesTagSet(t *testing.T) {
	var updated *models.Recipe
	recipes := &mockRecipeRepo{
		GetByIDFunc: func(ctx context.Context, userID, id int64) (*models.Recipe, error) {
			return &models.Recipe{
				ID: id, UserID: userID, Title: "cake", TimeMinutes: 30, Price: 500,
				TagIDs: []int64{1, 2}, IngredientIDs: []int64{5},
			}, nil
		},
		UpdateFunc: func(ctx context.Context, rec *models.Recipe) error {
			updated = rec
			return nil
		},
	}
	tags, ingredients := allOwned()
	svc := NewRecipeService(recipes, tags, ingredients)

	newTags := []int64{3}
	_, err := svc.Patch(context.Background(), &models.User{ID: 1}, 11, RecipePatch{TagIDs: &newTags})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, []int64{3}, updated.TagIDs)
	// Untouched fields survive the patch.
	assert.Equal(t, "cake", updated.Title)
	assert.Equal(t, []int64{5}, updated.IngredientIDs)
}

func TestRecipePatch_MissingRecipe(t *testing.T) {
	recipes := &mockRecipeRepo{
		GetByIDFunc: func(ctx context.Context, userID, id int64) (*models.Recipe, error) {
			return nil, apperr.ErrNotFound
		},
	}
	tags, ingredients := allOwned()
	svc := NewRecipeService(recipes, tags, ingredients)

	_, err := svc.Patch(context.Background(), &models.User{ID: 1}, 99, RecipePatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecipeGet_ExpandsAttributes(t *testing.T) {
	recipes := &mockRecipeRepo{
		GetByIDFunc: func(ctx context.Context, userID, id int64) (*models.Recipe, error) {
			return &models.Recipe{ID: id, UserID: userID, Title: "cake", Price: 500, TagIDs: []int64{2}}, nil
		},
	}
	tags := &mockLinkRepo{ownedAll: true, attrs: []models.Attribute{{ID: 2, UserID: 1, Name: "Dessert"}}}
	ingredients := &mockLinkRepo{ownedAll: true, attrs: []models.Attribute{}}
	svc := NewRecipeService(recipes, tags, ingredients)

	detail, err := svc.Get(context.Background(), &models.User{ID: 1}, 11)
	require.NoError(t, err)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Dessert", detail.Tags[0].Name)
	assert.Empty(t, detail.Ingredients)
}

func TestRecipeList_PassesFilter(t *testing.T) {
	var gotFilter repository.RecipeFilter
	recipes := &mockRecipeRepo{
		ListByOwnerFunc: func(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]models.Recipe, error) {
			gotFilter = filter
			return []models.Recipe{}, nil
		},
	}
	tags, ingredients := allOwned()
	svc := NewRecipeService(recipes, tags, ingredients)

	filter := repository.RecipeFilter{TagIDs: []int64{1, 2}, IngredientIDs: []int64{3}}
	_, err := svc.List(context.Background(), &models.User{ID: 1}, filter)
	require.NoError(t, err)
	assert.Equal(t, filter, gotFilter)
}
