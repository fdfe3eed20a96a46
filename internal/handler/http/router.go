package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zahek/todo-platform/internal/service"
	"github.com/zahek/todo-platform/pkg/health"
	"github.com/zahek/todo-platform/pkg/middleware"
)

// RouterConfig carries the transport settings NewRouter needs.
type RouterConfig struct {
	ServiceName  string
	CookieSecure bool
	CORS         middleware.CORSConfig

	// AuthRateLimitRPS and AuthRateLimitBurst bound /auth per client IP.
	// A zero rate disables limiting.
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all API routes registered. ctx
// bounds background work such as rate-limiter eviction.
func NewRouter(
	ctx context.Context,
	cfg RouterConfig,
	users *service.UserService,
	sessions *service.SessionService,
	workspace *service.WorkspaceService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	authenticate := Authenticate(sessions)

	authHandler := NewAuthHandler(users, sessions, cfg.CookieSecure, logger)
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.NoStore)
		if cfg.AuthRateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logger))
		}

		r.With(ContentTypeJSON).Post("/register", authHandler.Register)
		r.With(ContentTypeJSON).Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.With(authenticate).Get("/me", authHandler.Me)
	})

	workspaceHandler := NewWorkspaceHandler(workspace, logger)
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.With(ContentTypeJSON).Post("/projects", workspaceHandler.CreateProject)
		r.Get("/projects", workspaceHandler.ListProjects)
		r.With(ContentTypeJSON).Post("/tasks", workspaceHandler.CreateTask)
		r.Get("/tasks", workspaceHandler.ListTasks)
	})

	return r
}
