package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Incidents      *handlers.IncidentsHandler
	Dashboard      *handlers.DashboardHandler
	SavedSearches  *handlers.SavedSearchesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Handler())

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	domains := app.Group("/domains/:domain", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	domains.Get("/incidents", cfg.Incidents.List)
	domains.Post("/incidents", cfg.Incidents.Create)
	domains.Get("/incidents/:id", cfg.Incidents.Get)
	domains.Put("/incidents/:id", cfg.Incidents.Update)
	domains.Post("/incidents/:id/archive", cfg.Incidents.Archive)
	domains.Post("/incidents/:id/restore", cfg.Incidents.Restore)
	domains.Get("/incidents/:id/history", cfg.Incidents.History)
	domains.Get("/filters", cfg.Incidents.Filters)
	domains.Get("/dashboard", cfg.Dashboard.Snapshot)

	searches := app.Group("/saved-searches", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	searches.Get("/", cfg.SavedSearches.List)
	searches.Post("/", cfg.SavedSearches.Create)
	searches.Put("/:id", cfg.SavedSearches.Update)
	searches.Delete("/:id", cfg.SavedSearches.Delete)
	searches.Post("/:id/use", cfg.SavedSearches.Use)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/vocabulary/:category", cfg.Admin.ListVocabulary)
	admin.Post("/vocabulary", cfg.Admin.CreateVocabulary)
	admin.Put("/vocabulary/:id", cfg.Admin.UpdateVocabulary)
	admin.Delete("/vocabulary/:id", cfg.Admin.DeleteVocabulary)
	admin.Post("/sweep", cfg.Admin.TriggerSweep)
}
