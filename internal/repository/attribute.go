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

// AttributeKind names the tables backing one attribute entity. Tags and
// ingredients share the same row shape and differ only in where they live.
type AttributeKind struct {
	// Table is the entity table ("tags", "ingredients").
	Table string
	// LinkTable is the recipe junction table.
	LinkTable string
	// LinkColumn is the attribute id column in the junction table.
	LinkColumn string
}

// TagKind describes the tag tables.
var TagKind = AttributeKind{Table: "tags", LinkTable: "recipe_tags", LinkColumn: "tag_id"}

// IngredientKind describes the ingredient tables.
var IngredientKind = AttributeKind{Table: "ingredients", LinkTable: "recipe_ingredients", LinkColumn: "ingredient_id"}

// PostgresAttributeRepository implements owner-scoped persistence for one
// attribute kind against a PostgreSQL database.
type PostgresAttributeRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	kind AttributeKind
}

// NewPostgresAttributeRepository creates a repository bound to the tables of
// the given attribute kind.
func NewPostgresAttributeRepository(db *sql.DB, kind AttributeKind) *PostgresAttributeRepository {
	return &PostgresAttributeRepository{DB: db, kind: kind}
}

// ListByOwner returns the user's attributes sorted by name, descending.
// With assignedOnly set, only attributes linked to at least one of the
// user's recipes are returned.
func (s *PostgresAttributeRepository) ListByOwner(ctx context.Context, userID int64, assignedOnly bool) ([]models.Attribute, error) {
	query := fmt.Sprintf(
		`SELECT id, user_id, name FROM %s WHERE user_id = $1 ORDER BY name DESC`,
		s.kind.Table,
	)
	if assignedOnly {
		query = fmt.Sprintf(
			`SELECT a.id, a.user_id, a.name FROM %s a
			 WHERE a.user_id = $1
			   AND EXISTS (
			     SELECT 1 FROM %s l
			     JOIN recipes r ON r.id = l.recipe_id
			     WHERE l.%s = a.id AND r.user_id = $1
			   )
			 ORDER BY a.name DESC`,
			s.kind.Table, s.kind.LinkTable, s.kind.LinkColumn,
		)
	}

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Table, err)
	}
	defer rows.Close()

	attrs := []models.Attribute{}
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.kind.Table, err)
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// Create inserts a new attribute owned by the user.
func (s *PostgresAttributeRepository) Create(ctx context.Context, userID int64, name string) (*models.Attribute, error) {
	attr := models.Attribute{UserID: userID, Name: name}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, name) VALUES ($1, $2) RETURNING id`, s.kind.Table)
	if err := s.DB.QueryRowContext(ctx, query, userID, name).Scan(&attr.ID); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind.Table, err)
	}
	return &attr, nil
}

// UpdateName renames the user's attribute and returns the updated row.
// Returns apperr.ErrNotFound when the id does not exist or belongs to
// another user.
func (s *PostgresAttributeRepository) UpdateName(ctx context.Context, userID, id int64, name string) (*models.Attribute, error) {
	var attr models.Attribute
	query := fmt.Sprintf(
		`UPDATE %s SET name = $1 WHERE id = $2 AND user_id = $3 RETURNING id, user_id, name`,
		s.kind.Table,
	)
	err := s.DB.QueryRowContext(ctx, query, name, id, userID).Scan(&attr.ID, &attr.UserID, &attr.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind.Table, err)
	}
	return &attr, nil
}

// Delete removes the user's attribute. Junction rows cascade.
func (s *PostgresAttributeRepository) Delete(ctx context.Context, userID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, s.kind.Table)
	res, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.kind.Table, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListByRecipe returns the attributes linked to one of the user's recipes,
// sorted by name descending.
func (s *PostgresAttributeRepository) ListByRecipe(ctx context.Context, userID, recipeID int64) ([]models.Attribute, error) {
	query := fmt.Sprintf(
		`SELECT a.id, a.user_id, a.name FROM %s a
		 JOIN %s l ON l.%s = a.id
		 WHERE l.recipe_id = $1 AND a.user_id = $2
		 ORDER BY a.name DESC`,
		s.kind.Table, s.kind.LinkTable, s.kind.LinkColumn,
	)
	rows, err := s.DB.QueryContext(ctx, query, recipeID, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s by recipe: %w", s.kind.Table, err)
	}
	defer rows.Close()

	attrs := []models.Attribute{}
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.kind.Table, err)
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// CountOwned returns how many of the given ids exist and belong to the user.
func (s *PostgresAttributeRepository) CountOwned(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1 AND id = ANY($2)`, s.kind.Table)
	if err := s.DB.QueryRowContext(ctx, query, userID, pq.Array(ids)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count owned %s: %w", s.kind.Table, err)
	}
	return count, nil
}
