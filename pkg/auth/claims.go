package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenPayload captures the data available when minting a session token.
type SessionTokenPayload struct {
	UserID string
	Email  string
	// SessionID keys the server-side session record; a fresh one is minted
	// when left empty.
	SessionID string
}

// SessionTokenClaims is the typed JWT carried by the session cookie. The
// cookie is opaque to clients; the registered ID claim keys the server-side
// session record so logout can revoke it.
type SessionTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
