package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

// Recover logs every incoming request and turns handler panics into a
// generic 500 envelope instead of dropping the connection.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error("recovered from panic",
					zap.Any("panic", r),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("stack", string(debug.Stack())),
				)
				_ = response.Error(c, fiber.StatusInternalServerError, "Something went wrong")
			}
		}()

		logger.RequestLogger.Info("incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		return c.Next()
	}
}
