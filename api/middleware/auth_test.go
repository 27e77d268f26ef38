package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/leadfolio/leadfolio-backend/pkg/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
)

type stubSessionChecker struct {
	ok  bool
	err error
}

func (s stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

type stubUserLoader struct {
	users map[string]*models.User
}

func (s stubUserLoader) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s not found", id)
}

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "secret",
		Issuer:     "leadfolio",
		TTLMinutes: 60,
		CookieName: "leadfolio_session",
	}
}

func mintSessionCookie(t *testing.T, cfg config.SessionConfig, userID string) *http.Cookie {
	t.Helper()
	token, err := pkgAuth.MintSessionToken(cfg, time.Now(), pkgAuth.SessionTokenPayload{
		UserID: userID,
		Email:  userID + "@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return &http.Cookie{Name: cfg.CookieName, Value: token}
}

func TestAuthRejectsMissingCookie(t *testing.T) {
	cfg := sessionTestConfig()
	handler := Auth(cfg, stubSessionChecker{ok: true}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsGarbageCookie(t *testing.T) {
	cfg := sessionTestConfig()
	handler := Auth(cfg, stubSessionChecker{ok: true}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: "not-a-jwt"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := sessionTestConfig()
	handler := Auth(cfg, stubSessionChecker{ok: false}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(mintSessionCookie(t, cfg, "u1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsPrincipalFromUserRecord(t *testing.T) {
	cfg := sessionTestConfig()
	users := stubUserLoader{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "agent@example.com", IsAdmin: true},
	}}

	var captured struct {
		principal bool
		id        string
		email     string
		admin     bool
	}
	handler := Auth(cfg, stubSessionChecker{ok: true}, users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		captured.principal = ok
		captured.id = p.ID
		captured.email = p.Email
		captured.admin = p.IsAdmin
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(mintSessionCookie(t, cfg, "u1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !captured.principal {
		t.Fatal("expected principal in context")
	}
	if captured.id != "u1" {
		t.Fatalf("expected user u1 got %s", captured.id)
	}
	if captured.email != "agent@example.com" {
		t.Fatalf("expected email from user record got %s", captured.email)
	}
	if !captured.admin {
		t.Fatal("expected admin flag from user record")
	}
}

func TestOptionalAuthPassesAnonymousThrough(t *testing.T) {
	cfg := sessionTestConfig()

	for name, cookie := range map[string]*http.Cookie{
		"no cookie":      nil,
		"garbage cookie": {Name: cfg.CookieName, Value: "not-a-jwt"},
	} {
		var seeded bool
		handler := OptionalAuth(cfg, stubSessionChecker{ok: true}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, seeded = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", name, resp.Code)
		}
		if seeded {
			t.Fatalf("%s: expected no principal", name)
		}
	}
}

func TestOptionalAuthSeedsPrincipalWhenSessionValid(t *testing.T) {
	cfg := sessionTestConfig()
	users := stubUserLoader{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "agent@example.com"},
	}}

	var captured string
	handler := OptionalAuth(cfg, stubSessionChecker{ok: true}, users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFromContext(r.Context()); ok {
			captured = p.ID
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(mintSessionCookie(t, cfg, "u1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != "u1" {
		t.Fatalf("expected principal u1, got %q", captured)
	}
}

func TestAuthRejectsUnknownUser(t *testing.T) {
	cfg := sessionTestConfig()
	users := stubUserLoader{users: map[string]*models.User{}}
	handler := Auth(cfg, stubSessionChecker{ok: true}, users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(mintSessionCookie(t, cfg, "ghost"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
