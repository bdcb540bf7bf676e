package service

import (
	"context"
	"testing"

	"github.com/atinyakov/RecipeVault/internal/apperr"
	"github.com/atinyakov/RecipeVault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	CreateUserFunc func(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	UpdateUserFunc func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}
func (m *mockUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	return m.UpdateUserFunc(ctx, user)
}

type mockTokenRepo struct {
	IssueTokenFunc   func(ctx context.Context, userID int64, key string) (string, error)
	ResolveTokenFunc func(ctx context.Context, key string) (*models.User, error)
}

func (m *mockTokenRepo) IssueToken(ctx context.Context, userID int64, key string) (string, error) {
	return m.IssueTokenFunc(ctx, userID, key)
}
func (m *mockTokenRepo) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	return m.ResolveTokenFunc(ctx, key)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Test@example.com", NormalizeEmail("Test@EXAMPLE.Com"))
	assert.Equal(t, "a@b.com", NormalizeEmail("a@b.com"))
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
}

func TestCreateUser_NormalizesAndHashes(t *testing.T) {
	var stored *models.User
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			stored = user
			user.ID = 1
			return user, nil
		},
	}
	svc := NewUserService(repo, &mockTokenRepo{})

	user, err := svc.CreateUser(context.Background(), "Test@EXAMPLE.Com", "testpass", "Test")
	require.NoError(t, err)
	assert.Equal(t, "Test@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)

	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("testpass")))
	assert.Error(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("wrong")))
}

func TestCreateUser_Validation(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &mockTokenRepo{})

	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "empty email", email: "", password: "testpass", field: "email"},
		{name: "malformed email", email: "nodomain", password: "testpass", field: "email"},
		{name: "short password", email: "a@b.com", password: "pw", field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.email, tt.password, "")
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestCreateSuperuser_SetsFlags(t *testing.T) {
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = 1
			return user, nil
		},
	}
	svc := NewUserService(repo, &mockTokenRepo{})

	user, err := svc.CreateSuperuser(context.Background(), "admin@test.com", "adminpass")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("testpass"), bcrypt.MinCost)
	require.NoError(t, err)
	active := &models.User{ID: 1, Email: "a@b.com", PasswordHash: hash, IsActive: true}

	tests := []struct {
		name     string
		stored   *models.User
		lookup   error
		password string
		wantErr  bool
	}{
		{name: "success", stored: active, password: "testpass"},
		{name: "wrong password", stored: active, password: "wrongpass", wantErr: true},
		{name: "unknown email", lookup: apperr.ErrNotFound, password: "testpass", wantErr: true},
		{
			name:     "inactive account",
			stored:   &models.User{ID: 2, PasswordHash: hash, IsActive: false},
			password: "testpass",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
					if tt.lookup != nil {
						return nil, tt.lookup
					}
					return tt.stored, nil
				},
			}
			svc := NewUserService(repo, &mockTokenRepo{})

			user, err := svc.Authenticate(context.Background(), "a@b.com", tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.stored.ID, user.ID)
		})
	}
}

func TestIssueToken_GeneratesOpaqueKey(t *testing.T) {
	var issuedKey string
	tokens := &mockTokenRepo{
		IssueTokenFunc: func(ctx context.Context, userID int64, key string) (string, error) {
			issuedKey = key
			return key, nil
		},
	}
	svc := NewUserService(&mockUserRepo{}, tokens)

	key, err := svc.IssueToken(context.Background(), &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, issuedKey, key)
	assert.Len(t, key, 40)
}

func TestResolveToken_InactiveAccount(t *testing.T) {
	tokens := &mockTokenRepo{
		ResolveTokenFunc: func(ctx context.Context, key string) (*models.User, error) {
			return &models.User{ID: 1, IsActive: false}, nil
		},
	}
	svc := NewUserService(&mockUserRepo{}, tokens)

	_, err := svc.ResolveToken(context.Background(), "somekey")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateMe(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	require.NoError(t, err)

	var saved *models.User
	repo := &mockUserRepo{
		UpdateUserFunc: func(ctx context.Context, user *models.User) error {
			saved = user
			return nil
		},
	}
	svc := NewUserService(repo, &mockTokenRepo{})

	name := "New name"
	password := "newpass"
	user := &models.User{ID: 1, Name: "Old", PasswordHash: hash, IsActive: true}

	updated, err := svc.UpdateMe(context.Background(), user, &name, &password)
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	require.NotNil(t, saved)
	assert.NoError(t, bcrypt.CompareHashAndPassword(saved.PasswordHash, []byte("newpass")))
}

func TestUpdateMe_ShortPassword(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &mockTokenRepo{})

	short := "pw"
	_, err := svc.UpdateMe(context.Background(), &models.User{ID: 1}, nil, &short)
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "password")
}
