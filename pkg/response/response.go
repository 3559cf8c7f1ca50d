// Package response writes the uniform API envelope:
//
//	{ "status": "success" | "error", "message": string, "data": ... }
//
// Success bodies always carry a data field (null for a single-resource
// miss, [] for an empty list); error bodies omit it.
package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kanban-backend/internal/apperr"
	"kanban-backend/pkg/logger"
)

type successBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func Success(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(successBody{Status: "success", Message: message, Data: data})
}

func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(errorBody{Status: "error", Message: message})
}

// FromError maps a taxonomy error to its HTTP status. Anything outside the
// taxonomy, and every service error, is logged with its internal detail and
// reported to the client as a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			return Error(c, fiber.StatusBadRequest, ae.Message)
		case apperr.KindAuthentication:
			return Error(c, fiber.StatusUnauthorized, ae.Message)
		case apperr.KindNotFound:
			return Error(c, fiber.StatusNotFound, ae.Message)
		}
	}
	logger.ErrorLogger.Error("service error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return Error(c, fiber.StatusInternalServerError, "Something went wrong")
}
