package auth

import (
	"github.com/leadfolio/leadfolio-backend/internal/users"
)

// LoginRequest captures the provider credential sent to the login endpoint.
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// LoginResponse contains the session token and user produced by a successful
// login. The token travels in an HttpOnly cookie, never in the body.
type LoginResponse struct {
	SessionToken string         `json:"-"`
	SessionID    string         `json:"-"`
	User         *users.UserDTO `json:"user"`
}

// Principal is the authenticated caller carried through request context.
type Principal struct {
	ID      string
	Email   string
	IsAdmin bool
}
