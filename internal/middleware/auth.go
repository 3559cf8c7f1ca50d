package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kanban-backend/internal/token"
	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

// LocalsUserID is the fiber locals key carrying the authenticated user id.
const LocalsUserID = "userID"

// LocalsClaims carries the full decoded token claims.
const LocalsClaims = "claims"

// authRequiredMessage is deliberately identical for a missing header, a
// malformed header, a bad signature and an expired token: the reply must
// not tell an attacker which part failed. The security log keeps the
// distinction.
const authRequiredMessage = "Authentication required"

// Auth is the gate in front of every protected route. It rejects before any
// handler or data-layer code runs, and on success puts the authenticated
// identity into the request locals.
func Auth(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			logger.SecurityLogger.Warn("request without token",
				zap.String("method", c.Method()), zap.String("path", c.Path()))
			return response.Error(c, fiber.StatusUnauthorized, authRequiredMessage)
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			logger.SecurityLogger.Warn("malformed authorization header",
				zap.String("method", c.Method()), zap.String("path", c.Path()))
			return response.Error(c, fiber.StatusUnauthorized, authRequiredMessage)
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			cause := "invalid token"
			if errors.Is(err, token.ErrExpiredToken) {
				cause = "expired token"
			}
			logger.SecurityLogger.Warn(cause,
				zap.String("method", c.Method()), zap.String("path", c.Path()))
			return response.Error(c, fiber.StatusUnauthorized, authRequiredMessage)
		}

		userID, err := claims.UserID()
		if err != nil {
			logger.SecurityLogger.Warn("token with non-numeric subject",
				zap.String("subject", claims.Subject))
			return response.Error(c, fiber.StatusUnauthorized, authRequiredMessage)
		}

		c.Locals(LocalsUserID, userID)
		c.Locals(LocalsClaims, claims)
		return c.Next()
	}
}
