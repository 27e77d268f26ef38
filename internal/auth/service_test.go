package auth

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/leadfolio/leadfolio-backend/internal/users"
	pkgAuth "github.com/leadfolio/leadfolio-backend/pkg/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
)

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeUserRepo struct {
	users   map[string]*models.User
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	f.creates++
	u := dto.ToModel()
	f.users[u.ID] = u
	return u, nil
}

type fakeSessions struct {
	created map[string]string
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{created: make(map[string]string)}
}

func (f *fakeSessions) Create(ctx context.Context, sessionID, userID string) error {
	f.created[sessionID] = userID
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "leadfolio",
		TTLMinutes: 60,
		CookieName: "leadfolio_session",
	}
}

func newTestService(t *testing.T, verifier CredentialVerifier, repo *fakeUserRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Verifier:       verifier,
		UserRepo:       repo,
		SessionManager: sessions,
		SessionConfig:  testSessionConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginCreatesUserOnFirstSignIn(t *testing.T) {
	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	verifier := &fakeVerifier{identity: &Identity{Subject: "did:magic:abc", Email: "agent@example.com"}}
	svc := newTestService(t, verifier, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Token: "provider-token"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one user create, got %d", repo.creates)
	}
	if resp.User == nil || resp.User.ID != "did:magic:abc" {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}
	if resp.SessionToken == "" || resp.SessionID == "" {
		t.Fatal("expected session token and id")
	}
	if owner := sessions.created[resp.SessionID]; owner != "did:magic:abc" {
		t.Fatalf("expected session record for user, got %q", owner)
	}

	claims, err := pkgAuth.ParseSessionToken(testSessionConfig(), resp.SessionToken)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}
	if claims.ID != resp.SessionID {
		t.Fatalf("token jti %q does not match session id %q", claims.ID, resp.SessionID)
	}
}

func TestLoginReusesExistingUser(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["did:magic:abc"] = &models.User{ID: "did:magic:abc", Email: "agent@example.com"}
	sessions := newFakeSessions()
	verifier := &fakeVerifier{identity: &Identity{Subject: "did:magic:abc", Email: "agent@example.com"}}
	svc := newTestService(t, verifier, repo, sessions)

	if _, err := svc.Login(context.Background(), LoginRequest{Token: "provider-token"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no user create, got %d", repo.creates)
	}
}

func TestLoginRejectsBadCredential(t *testing.T) {
	svc := newTestService(t, &fakeVerifier{err: fmt.Errorf("bad signature")}, newFakeUserRepo(), newFakeSessions())

	_, err := svc.Login(context.Background(), LoginRequest{Token: "garbage"})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	svc := newTestService(t, &fakeVerifier{}, newFakeUserRepo(), newFakeSessions())

	_, err := svc.Login(context.Background(), LoginRequest{Token: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(t, &fakeVerifier{}, newFakeUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "sess-1" {
		t.Fatalf("expected sess-1 revoked, got %v", sessions.revoked)
	}

	// Blank session id is a no-op rather than an error.
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout blank: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected no extra revocation, got %v", sessions.revoked)
	}
}

func TestMeUnknownUserIsUnauthorized(t *testing.T) {
	svc := newTestService(t, &fakeVerifier{}, newFakeUserRepo(), newFakeSessions())

	_, err := svc.Me(context.Background(), "ghost")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
