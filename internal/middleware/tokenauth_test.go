package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/RecipeVault/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

// fakeResolver implements TokenResolver for testing.
type fakeResolver struct {
	user *models.User
	err  error
}

func (f *fakeResolver) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	return f.user, f.err
}

func TestTokenAuth_NoHeader(t *testing.T) {
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{})(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recipe/tags", nil)
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
}

func TestTokenAuth_WrongScheme(t *testing.T) {
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{})(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recipe/tags", nil)
	req.Header.Set("Authorization", "Basic abc123")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called for a Basic header")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
}

func TestTokenAuth_InvalidToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{err: errors.New("unknown token")})(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recipe/tags", nil)
	req.Header.Set("Authorization", "Token deadbeef")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called for an unknown token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
}

func TestTokenAuth_ValidToken(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.com"}
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{user: user})(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recipe/tags", nil)
	req.Header.Set("Authorization", "Token goodkey")
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Error("expected next handler to be called for a valid token")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 OK, got %d", rec.Code)
	}
	got := UserFromContext(dummy.ctx)
	if got == nil || got.ID != user.ID {
		t.Errorf("expected context user %+v, got %+v", user, got)
	}
}

func TestTokenAuth_BearerScheme(t *testing.T) {
	user := &models.User{ID: 2, Email: "b@c.com"}
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{user: user})(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recipe/tags", nil)
	req.Header.Set("Authorization", "Bearer goodkey")
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Error("expected next handler to be called for a Bearer token")
	}
}

func TestUserFromContext_Missing(t *testing.T) {
	if user := UserFromContext(context.Background()); user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}
