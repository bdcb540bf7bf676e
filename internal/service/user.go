// Package service provides the business logic for accounts, tokens, tags,
// ingredients, recipes and image attachments, delegating persistence to
// repository interfaces.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 5

// UserRepository defines the persistence operations required by UserService.
type UserRepository interface {
	// CreateUser inserts a new user and returns it with its assigned id.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail fetches a user by email, including the credential hash.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser persists the user's name and credential hash.
	UpdateUser(ctx context.Context, user *models.User) error
}

// TokenRepository defines the token persistence operations required by
// UserService.
type TokenRepository interface {
	// IssueToken stores the key for the user unless one exists and returns
	// the key on record.
	IssueToken(ctx context.Context, userID int64, key string) (string, error)
	// ResolveToken returns the user owning the token key.
	ResolveToken(ctx context.Context, key string) (*models.User, error)
}

// UserService implements account and token operations.
type UserService struct {
	users  UserRepository
	tokens TokenRepository
}

// NewUserService constructs a UserService using the provided repositories.
func NewUserService(users UserRepository, tokens TokenRepository) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// NormalizeEmail lowercases the domain part of an email address.
func NormalizeEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}

// validateCredentials checks email and password shape shared by create and
// update paths.
func validateCredentials(email, password string) *apperr.ValidationError {
	ve := &apperr.ValidationError{}
	if email == "" {
		ve.Add("email", "this field may not be blank")
	} else if !strings.Contains(email, "@") {
		ve.Add("email", "enter a valid email address")
	}
	if len(password) < minPasswordLength {
		ve.Add("password", fmt.Sprintf("ensure this field has at least %d characters", minPasswordLength))
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// CreateUser creates an account with a normalized email and hashed password.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	if ve := validateCredentials(email, password); ve != nil {
		return nil, ve
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
	}
	return s.users.CreateUser(ctx, user)
}

// CreateSuperuser creates an account with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	if ve := validateCredentials(email, password); ve != nil {
		return nil, ve
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	return s.users.CreateUser(ctx, user)
}

// Authenticate verifies the credentials and returns the matching active
// account, or apperr.ErrUnauthorized. Wrong passwords are a lookup miss,
// not an internal error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

// IssueToken returns the account's token, generating one on first login and
// reusing it thereafter.
func (s *UserService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	key, err := generateTokenKey()
	if err != nil {
		return "", err
	}
	return s.tokens.IssueToken(ctx, user.ID, key)
}

// ResolveToken returns the active account owning the token key.
func (s *UserService) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	user, err := s.tokens.ResolveToken(ctx, key)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

// UpdateMe updates the caller's name and/or password. Nil fields are left
// unchanged.
func (s *UserService) UpdateMe(ctx context.Context, user *models.User, name, password *string) (*models.User, error) {
	if name != nil {
		user.Name = *name
	}
	if password != nil {
		if len(*password) < minPasswordLength {
			return nil, apperr.Invalid("password", fmt.Sprintf("ensure this field has at least %d characters", minPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// generateTokenKey produces a 40-character opaque hex token.
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
