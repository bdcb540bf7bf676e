// Package repository provides PostgreSQL persistence for users, tokens,
// tags, ingredients and recipes. Every query on owned resources is scoped
// by the owning user id.
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

const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new user and returns it with its assigned id.
// A duplicate email surfaces as a field validation error.
func (s *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := s.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (email, password_hash, name, is_active, is_staff, is_superuser)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.Email, user.PasswordHash, user.Name, user.IsActive, user.IsStaff, user.IsSuperuser,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.Invalid("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email, including the credential hash.
// Returns apperr.ErrNotFound if no such user exists.
func (s *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, name, is_active, is_staff, is_superuser
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsActive, &user.IsStaff, &user.IsSuperuser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// UpdateUser persists the user's name and credential hash.
func (s *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.DB.ExecContext(
		ctx,
		`UPDATE users SET name = $1, password_hash = $2 WHERE id = $3`,
		user.Name, user.PasswordHash, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
