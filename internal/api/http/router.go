package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bart-incident-bot/internal/api/http/handlers"
	"github.com/spec-kit/bart-incident-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Messages       *handlers.MessagesHandler
	Incidents      *handlers.IncidentHandler
	Workstreams    *handlers.WorkstreamHandler
	Resources      *handlers.ResourcesHandler
	Statuses       *handlers.StatusHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Controller and action names match the
// paths the SPA already calls.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/api/messages", cfg.Messages.Post)

	requireUser := cfg.AuthMiddleware.Handle

	incidents := app.Group("/api/IncidentApi", requireUser)
	incidents.Post("/CreateIncidentAsync", cfg.Incidents.Create)
	incidents.Get("/GetAllIncidents", cfg.Incidents.GetAll)
	incidents.Get("/SearchIncidents", cfg.Incidents.Search)
	incidents.Get("/GetIncident", cfg.Incidents.Get)

	workstreams := app.Group("/api/WorkstreamApi", requireUser)
	workstreams.Post("/CreateOrUpdateWorkstremAsync", cfg.Workstreams.CreateOrUpdate)
	workstreams.Get("/GetAllWorkstremsAsync", cfg.Workstreams.GetAll)

	resources := app.Group("/api/ResourcesApi", requireUser)
	resources.Get("/GetAvailabilityData", cfg.Resources.GetAvailabilityData)
	resources.Get("/GetConferenceRoom", cfg.Resources.GetConferenceRoom)

	app.Get("/api/StatusApi/GetAllStatuses", requireUser, cfg.Statuses.GetAll)

	users := app.Group("/api/UsersApi", requireUser)
	users.Get("/SearchUsers", cfg.Users.Search)
	users.Get("/GetGroupMembers", cfg.Users.GroupMembers)
}
