package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leadfolio/leadfolio-backend/pkg/config"
)

// Identity is what the login provider asserts about the caller.
type Identity struct {
	Subject string
	Email   string
}

// CredentialVerifier checks a login credential issued by the identity
// provider and returns the identity it carries.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type magicClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type magicVerifier struct {
	cfg config.MagicConfig
}

// NewMagicVerifier builds a verifier for the magic-link provider's
// HS256-signed login tokens.
func NewMagicVerifier(cfg config.MagicConfig) (CredentialVerifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("magic secret is required")
	}
	return &magicVerifier{cfg: cfg}, nil
}

func (v *magicVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("credential is required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	claims := &magicClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse login token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("login token is invalid")
	}

	subject := strings.TrimSpace(claims.Subject)
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if subject == "" || email == "" {
		return nil, fmt.Errorf("login token missing subject or email")
	}
	return &Identity{Subject: subject, Email: email}, nil
}
