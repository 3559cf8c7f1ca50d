package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthStats struct {
	Users       int `json:"users"`
	Teams       int `json:"teams"`
	Tasks       int `json:"tasks"`
	Attachments int `json:"attachments"`
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.PingContext(c.Context()); err != nil {
		logger.ErrorLogger.Error("health check: database unreachable", zap.Error(err))
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unavailable")
	}

	var stats healthStats
	row := h.db.QueryRowContext(c.Context(), `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM task_attachments)`)
	if err := row.Scan(&stats.Users, &stats.Teams, &stats.Tasks, &stats.Attachments); err != nil {
		logger.ErrorLogger.Error("health check: stats query failed", zap.Error(err))
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unavailable")
	}

	return response.Success(c, fiber.StatusOK, "Service is healthy", stats)
}
