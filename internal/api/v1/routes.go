package v1

import (
	"github.com/gofiber/fiber/v2"

	"kanban-backend/internal/api/v1/handlers"
)

// Handlers bundles the endpoint groups for route registration.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Tasks       *handlers.TaskHandler
	Teams       *handlers.TeamHandler
	Attachments *handlers.AttachmentHandler
	Health      *handlers.HealthHandler
}

// RegisterRoutes mounts the HTTP surface. gate is the token middleware;
// only /health and /api/auth/login bypass it.
func RegisterRoutes(app *fiber.App, h Handlers, gate fiber.Handler) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", gate, h.Auth.Logout)
	auth.Get("/me", gate, h.Auth.Me)

	tasks := api.Group("/tasks", gate)
	tasks.Post("/", h.Tasks.Create)
	tasks.Get("/", h.Tasks.List)
	tasks.Get("/:id", h.Tasks.Get)
	tasks.Put("/:id", h.Tasks.Update)
	tasks.Delete("/:id", h.Tasks.Delete)

	tasks.Post("/:id/attachments", h.Attachments.Upload)
	tasks.Get("/:id/attachments", h.Attachments.List)
	tasks.Get("/:id/attachments/:attachmentId/download", h.Attachments.Download)
	tasks.Delete("/:id/attachments/:attachmentId", h.Attachments.Delete)

	teams := api.Group("/teams", gate)
	teams.Get("/", h.Teams.List)
}
