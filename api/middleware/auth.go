package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/leadfolio/leadfolio-backend/api/responses"
	"github.com/leadfolio/leadfolio-backend/internal/auth"
	pkgAuth "github.com/leadfolio/leadfolio-backend/pkg/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/auth/session"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
	"github.com/leadfolio/leadfolio-backend/pkg/logger"
)

type userLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Auth validates the session cookie and seeds the request context with the
// authenticated principal. The admin flag comes from the user record, not
// the token, so demoting an admin takes effect on their next request.
func Auth(cfg config.SessionConfig, sessions session.Checker, users userLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseSessionToken(cfg, strings.TrimSpace(cookie.Value))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if sessions != nil {
				ok, err := sessions.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			principal := auth.Principal{ID: claims.UserID, Email: claims.Email}
			if users != nil {
				user, err := users.FindByID(r.Context(), claims.UserID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unknown user"))
					return
				}
				principal.Email = user.Email
				principal.IsAdmin = user.IsAdmin
			}

			ctx := WithPrincipal(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  principal.ID,
					"is_admin": principal.IsAdmin,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth seeds the principal when the request carries a valid session
// and passes it through anonymously otherwise. Routes behind it decide for
// themselves what an anonymous caller may do.
func OptionalAuth(cfg config.SessionConfig, sessions session.Checker, users userLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseSessionToken(cfg, strings.TrimSpace(cookie.Value))
			if err != nil || claims.ID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				ok, err := sessions.HasSession(r.Context(), claims.ID)
				if err != nil || !ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			principal := auth.Principal{ID: claims.UserID, Email: claims.Email}
			if users != nil {
				user, err := users.FindByID(r.Context(), claims.UserID)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				principal.Email = user.Email
				principal.IsAdmin = user.IsAdmin
			}

			ctx := WithPrincipal(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  principal.ID,
					"is_admin": principal.IsAdmin,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
