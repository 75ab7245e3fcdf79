package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/link-shortener/internal/api/http/handlers"
	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	URLs           *handlers.URLsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Get("/r/:alias", cfg.URLs.Redirect)

	api := app.Group("/api")
	api.Get("/url", cfg.URLs.List)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)

	private := api.Group("/private", cfg.AuthMiddleware.Handle)
	private.Post("/url/save", cfg.URLs.Create)
	private.Delete("/url/:id", cfg.URLs.Delete)
}
