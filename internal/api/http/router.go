package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/permit-service/internal/api/http/handlers"
	"github.com/spec-kit/permit-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Permits        *handlers.PermitsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	permits := api.Group("/permits")
	permits.Post("", cfg.Permits.Create)
	permits.Get("", cfg.Permits.List)
	permits.Get("/stats", cfg.Permits.Stats)
	permits.Get("/:id", cfg.Permits.Get)
	permits.Patch("/:id", cfg.Permits.Update)
	permits.Post("/:id/approve", cfg.Permits.Approve)
	permits.Post("/:id/reject", cfg.Permits.Reject)
	permits.Post("/:id/activate", cfg.Permits.Activate)
	permits.Post("/:id/complete", cfg.Permits.Complete)
	permits.Post("/:id/cancel", cfg.Permits.Cancel)
	permits.Post("/:id/inspections", cfg.Permits.AddInspection)
	permits.Post("/:id/incidents", cfg.Permits.AddIncident)
	permits.Delete("/:id", cfg.Permits.Delete)
}
