package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/nudge/internal/api/handler"
	"github.com/albapepper/nudge/internal/auth"
	"github.com/albapepper/nudge/internal/cache"
	"github.com/albapepper/nudge/internal/config"
	"github.com/albapepper/nudge/internal/notifications"
)

// Deps are the services the router wires into handlers.
type Deps struct {
	Engine   *notifications.Engine
	Runner   *notifications.Runner
	DB       handler.HealthChecker
	Cache    *cache.Cache
	Resolver *auth.Resolver
	Logger   *slog.Logger
	Now      func() time.Time // nil means time.Now
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware(deps.Logger))
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps.Engine, deps.Runner, deps.DB, deps.Cache, cfg, deps.Logger)
	if deps.Now != nil {
		h.WithClock(deps.Now)
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1/notifications", func(r chi.Router) {
		// Scheduler
		r.Group(func(r chi.Router) {
			r.Use(CronAuth(cfg.CronSecret))
			r.Post("/run", h.RunNotifications)
			r.Get("/last-run", h.LastRun)
		})

		// Signed-in user
		r.Group(func(r chi.Router) {
			r.Use(UserAuth(deps.Resolver))
			r.Post("/check", h.CheckNotifications)
		})
	})

	return r
}
