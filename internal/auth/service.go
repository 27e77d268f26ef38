package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/leadfolio/leadfolio-backend/internal/users"
	pkgAuth "github.com/leadfolio/leadfolio-backend/pkg/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/auth/session"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	"github.com/leadfolio/leadfolio-backend/pkg/db"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID string) (*users.UserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type sessionManager interface {
	Create(ctx context.Context, sessionID, userID string) error
	Revoke(ctx context.Context, sessionID string) error
}

type service struct {
	verifier   CredentialVerifier
	users      userRepository
	session    sessionManager
	sessionCfg config.SessionConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Verifier       CredentialVerifier
	UserRepo       userRepository
	SessionManager sessionManager
	SessionConfig  config.SessionConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		verifier:   params.Verifier,
		users:      params.UserRepo,
		session:    params.SessionManager,
		sessionCfg: params.SessionConfig,
	}, nil
}

// Login verifies the provider credential, creating the user record on first
// sign-in, then mints a session token backed by a Redis session record.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	credential := strings.TrimSpace(req.Token)
	if credential == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	sessionID := session.NewSessionID()
	token, err := pkgAuth.MintSessionToken(s.sessionCfg, time.Now().UTC(), pkgAuth.SessionTokenPayload{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}
	if err := s.session.Create(ctx, sessionID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}

	return &LoginResponse{
		SessionToken: token,
		SessionID:    sessionID,
		User:         users.FromModel(user),
	}, nil
}

// Logout revokes the server-side session record.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

// Me returns the profile for the authenticated user.
func (s *service) Me(ctx context.Context, userID string) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return users.FromModel(user), nil
}

func (s *service) findOrCreate(ctx context.Context, identity *Identity) (*models.User, error) {
	user, err := s.users.FindByID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	created, err := s.users.Create(ctx, users.CreateUserDTO{
		ID:    identity.Subject,
		Email: identity.Email,
	})
	if err != nil {
		// Concurrent first logins race on the insert; the loser re-reads.
		if db.IsUniqueViolation(err, "") {
			return s.users.FindByID(ctx, identity.Subject)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return created, nil
}
