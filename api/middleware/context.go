package middleware

import (
	"context"

	"github.com/leadfolio/leadfolio-backend/internal/auth"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// PrincipalFromContext returns the authenticated actor seeded by Auth.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	if ctx == nil {
		return auth.Principal{}, false
	}
	if v, ok := ctx.Value(ctxPrincipal).(auth.Principal); ok {
		return v, true
	}
	return auth.Principal{}, false
}

// WithPrincipal injects the actor into the context.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}
