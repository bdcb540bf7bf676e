package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
)

// PostgresTokenRepository implements token persistence using a PostgreSQL database.
type PostgresTokenRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTokenRepository creates a new PostgresTokenRepository with the
// given database connection.
func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{DB: db}
}

// IssueToken stores the given key for the user unless one already exists,
// and returns the key now on record. The no-op conflict update makes the
// statement return the existing key, so each user holds exactly one token.
func (s *PostgresTokenRepository) IssueToken(ctx context.Context, userID int64, key string) (string, error) {
	var stored string
	err := s.DB.QueryRowContext(
		ctx,
		`INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = auth_tokens.user_id
		 RETURNING key`,
		key, userID,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return stored, nil
}

// ResolveToken returns the user owning the given token key.
// Returns apperr.ErrUnauthorized for unknown keys.
func (s *PostgresTokenRepository) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT u.id, u.email, u.password_hash, u.name, u.is_active, u.is_staff, u.is_superuser
		 FROM auth_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.key = $1`,
		key,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsActive, &user.IsStaff, &user.IsSuperuser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return &user, nil
}
