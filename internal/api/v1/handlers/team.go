package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kanban-backend/internal/repository"
	"kanban-backend/pkg/response"
)

type TeamHandler struct {
	teams repository.TeamStore
}

func NewTeamHandler(teams repository.TeamStore) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) List(c *fiber.Ctx) error {
	teams, err := h.teams.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Teams retrieved successfully", teams)
}
