package controllers

import (
	"net/http"
	"strings"

	"github.com/leadfolio/leadfolio-backend/api/middleware"
	"github.com/leadfolio/leadfolio-backend/api/responses"
	"github.com/leadfolio/leadfolio-backend/api/validators"
	"github.com/leadfolio/leadfolio-backend/internal/auth"
	pkgAuth "github.com/leadfolio/leadfolio-backend/pkg/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
	"github.com/leadfolio/leadfolio-backend/pkg/logger"
)

// AuthLogin exchanges a magic-link credential for a session cookie.
func AuthLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(cfg, result.SessionToken, int(cfg.Session.TTL().Seconds())))
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the server-side session and clears the cookie. A
// missing or mangled cookie still clears and succeeds so logout is safe
// to retry.
func AuthLogout(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(cfg.Session.CookieName); err == nil {
			if claims, err := pkgAuth.ParseSessionToken(cfg.Session, strings.TrimSpace(cookie.Value)); err == nil {
				sessionID = claims.ID
			}
		}

		if svc != nil && sessionID != "" {
			if err := svc.Logout(r.Context(), sessionID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		http.SetCookie(w, sessionCookie(cfg, "", -1))
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

// AuthMe returns the authenticated user's own record.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		user, err := svc.Me(r.Context(), principal.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

func sessionCookie(cfg *config.Config, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}
