package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/lib/pq"
)

// RecipeFilter restricts a recipe listing to rows linked to any of the given
// tag ids and, independently, any of the given ingredient ids. Empty slices
// leave the listing unrestricted.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// PostgresRecipeRepository implements owner-scoped recipe persistence
// against a PostgreSQL database.
type PostgresRecipeRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository with the
// given database connection.
func NewPostgresRecipeRepository(db *sql.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{DB: db}
}

// ListByOwner returns the user's recipes in storage order, restricted by the
// given filter. Tag and ingredient link ids are loaded for each row.
func (s *PostgresRecipeRepository) ListByOwner(ctx context.Context, userID int64, filter RecipeFilter) ([]models.Recipe, error) {
	query := `SELECT id, user_id, title, time_minutes, price_cents, link, image
		 FROM recipes WHERE user_id = $1`
	args := []any{userID}

	if len(filter.TagIDs) > 0 {
		args = append(args, pq.Array(filter.TagIDs))
		query += fmt.Sprintf(
			` AND id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id = ANY($%d))`,
			len(args),
		)
	}
	if len(filter.IngredientIDs) > 0 {
		args = append(args, pq.Array(filter.IngredientIDs))
		query += fmt.Sprintf(
			` AND id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id = ANY($%d))`,
			len(args),
		)
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetByID returns the user's recipe with its link ids.
// Returns apperr.ErrNotFound when the id does not exist or belongs to
// another user.
func (s *PostgresRecipeRepository) GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	row := s.DB.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, time_minutes, price_cents, link, image
		 FROM recipes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	recipes := []models.Recipe{*rec}
	if err := s.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// Create inserts the recipe and its links in one transaction and returns it
// with its assigned id.
func (s *PostgresRecipeRepository) Create(ctx context.Context, rec *models.Recipe) (*models.Recipe, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(
		ctx,
		`INSERT INTO recipes (user_id, title, time_minutes, price_cents, link, image)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		rec.UserID, rec.Title, rec.TimeMinutes, int64(rec.Price), rec.Link, rec.Image,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	if err := insertLinks(ctx, tx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Update replaces the recipe row and its full link membership in one
// transaction, so readers never observe a partially replaced set.
// The image column is managed separately via SetImage.
func (s *PostgresRecipeRepository) Update(ctx context.Context, rec *models.Recipe) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE recipes SET title = $1, time_minutes = $2, price_cents = $3, link = $4
		 WHERE id = $5 AND user_id = $6`,
		rec.Title, rec.TimeMinutes, int64(rec.Price), rec.Link, rec.ID, rec.UserID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("clear tag links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("clear ingredient links: %w", err)
	}
	if err := insertLinks(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes the user's recipe. Junction rows cascade.
func (s *PostgresRecipeRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(
		ctx,
		`DELETE FROM recipes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetImage records the stored image path for the user's recipe. An empty
// path clears the reference.
func (s *PostgresRecipeRepository) SetImage(ctx context.Context, userID, id int64, path string) error {
	res, err := s.DB.ExecContext(
		ctx,
		`UPDATE recipes SET image = $1 WHERE id = $2 AND user_id = $3`,
		path, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set recipe image: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// scanRecipe reads one recipe row from a row scanner.
func scanRecipe(row interface{ Scan(...any) error }) (*models.Recipe, error) {
	var rec models.Recipe
	var cents int64
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.TimeMinutes, &cents, &rec.Link, &rec.Image)
	if err != nil {
		return nil, err
	}
	rec.Price = models.Price(cents)
	rec.TagIDs = []int64{}
	rec.IngredientIDs = []int64{}
	return &rec, nil
}

// insertLinks writes the recipe's tag and ingredient junction rows.
func insertLinks(ctx context.Context, tx *sql.Tx, rec *models.Recipe) error {
	for _, tagID := range rec.TagIDs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			rec.ID, tagID,
		); err != nil {
			return fmt.Errorf("link tag: %w", err)
		}
	}
	for _, ingredientID := range rec.IngredientIDs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			rec.ID, ingredientID,
		); err != nil {
			return fmt.Errorf("link ingredient: %w", err)
		}
	}
	return nil
}

// loadLinks fills TagIDs and IngredientIDs for the given recipes.
func (s *PostgresRecipeRepository) loadLinks(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	index := make(map[int64]*models.Recipe, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = &recipes[i]
	}

	rows, err := s.DB.QueryContext(
		ctx,
		`SELECT recipe_id, tag_id FROM recipe_tags WHERE recipe_id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("load tag links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID, tagID int64
		if err := rows.Scan(&recipeID, &tagID); err != nil {
			return fmt.Errorf("scan tag link: %w", err)
		}
		if rec, ok := index[recipeID]; ok {
			rec.TagIDs = append(rec.TagIDs, tagID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.DB.QueryContext(
		ctx,
		`SELECT recipe_id, ingredient_id FROM recipe_ingredients WHERE recipe_id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("load ingredient links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID, ingredientID int64
		if err := rows.Scan(&recipeID, &ingredientID); err != nil {
			return fmt.Errorf("scan ingredient link: %w", err)
		}
		if rec, ok := index[recipeID]; ok {
			rec.IngredientIDs = append(rec.IngredientIDs, ingredientID)
		}
	}
	return rows.Err()
}
