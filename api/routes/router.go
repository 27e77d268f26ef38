package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadfolio/leadfolio-backend/api/controllers"
	"github.com/leadfolio/leadfolio-backend/api/middleware"
	"github.com/leadfolio/leadfolio-backend/internal/auth"
	"github.com/leadfolio/leadfolio-backend/internal/buyers"
	"github.com/leadfolio/leadfolio-backend/pkg/auth/session"
	"github.com/leadfolio/leadfolio-backend/pkg/config"
	"github.com/leadfolio/leadfolio-backend/pkg/db"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	"github.com/leadfolio/leadfolio-backend/pkg/logger"
	"github.com/leadfolio/leadfolio-backend/pkg/metrics"
	"github.com/leadfolio/leadfolio-backend/pkg/redis"
)

// UserLoader resolves the authenticated user record for the auth middleware.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RateLimitStore counts write attempts inside a rolling window. The Redis
// client satisfies it in production; the in-memory store covers single
// instance deployments and tests.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimitKeyer namespaces counter keys. Nil means raw scopes are used.
type RateLimitKeyer interface {
	RateLimitKey(scope string) string
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.Checker,
	usersRepo UserLoader,
	authService auth.Service,
	buyerService buyers.Service,
	limiter RateLimitStore,
	limiterKeys RateLimitKeyer,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	requireAuth := middleware.Auth(cfg.Session, sessions, usersRepo, logg)
	optionalAuth := middleware.OptionalAuth(cfg.Session, sessions, usersRepo, logg)
	writeLimit := middleware.WriteRateLimit(cfg.RateLimit, limiter, limiterKeys, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(writeLimit).Post("/login", controllers.AuthLogin(authService, cfg, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/v1/buyers", func(r chi.Router) {
		// Import accepts anonymous uploads; the service reports unowned
		// rows instead of rejecting the request outright.
		r.With(optionalAuth).Post("/import", controllers.BuyersImport(buyerService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", controllers.BuyersList(buyerService, logg))
			r.With(writeLimit).Post("/", controllers.BuyersCreate(buyerService, logg))
			r.Get("/export", controllers.BuyersExport(buyerService, logg))

			r.Route("/{buyerId}", func(r chi.Router) {
				r.Get("/", controllers.BuyersGet(buyerService, logg))
				r.With(writeLimit).Post("/", controllers.BuyersUpdate(buyerService, logg))
				r.Delete("/", controllers.BuyersDelete(buyerService, logg))
				r.Post("/status", controllers.BuyersSetStatus(buyerService, logg))
			})
		})
	})

	return r
}
