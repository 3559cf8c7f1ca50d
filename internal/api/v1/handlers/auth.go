package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kanban-backend/internal/middleware"
	"kanban-backend/internal/models"
	"kanban-backend/internal/repository"
	"kanban-backend/internal/token"
	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

type AuthHandler struct {
	users  repository.UserStore
	tokens *token.Service
}

func NewAuthHandler(users repository.UserStore, tokens *token.Service) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials and issues a bearer token. "User unknown" and
// "wrong password" produce the same reply so the endpoint does not leak
// which factor failed.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("bad login request body", zap.Error(err))
		return response.Error(c, fiber.StatusBadRequest, "Bad request")
	}

	if strings.TrimSpace(req.Username) == "" {
		return response.Error(c, fiber.StatusBadRequest, "Username is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return response.Error(c, fiber.StatusBadRequest, "Password is required")
	}

	user, err := h.users.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return response.FromError(c, err)
	}
	if user == nil {
		logger.SecurityLogger.Warn("login failed: unknown user",
			zap.String("username", req.Username))
		return response.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("login failed: wrong password",
			zap.String("username", req.Username))
		return response.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	signed, err := h.tokens.Issue(user.ID, user.Username, user.Name)
	if err != nil {
		logger.ErrorLogger.Error("token issue failed", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	logger.AuditLogger.Info("login success", zap.Int("user_id", user.ID))
	return response.Success(c, fiber.StatusOK, "Login successful", LoginResponse{
		Token: signed,
		User:  user,
	})
}

// Logout is stateless: the gate has already verified the bearer, the client
// discards its token, and the server keeps no list to invalidate.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	logger.AuditLogger.Info("logout",
		zap.Int("user_id", c.Locals(middleware.LocalsUserID).(int)))
	return response.Success(c, fiber.StatusOK, "Successfully logout from the system", true)
}

// Me returns the authenticated user's record, or data null when the row
// behind a still-valid token is gone.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals(middleware.LocalsUserID).(int)

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	if user == nil {
		logger.SecurityLogger.Warn("valid token for missing user", zap.Int("user_id", userID))
		return response.Success(c, fiber.StatusOK, "User not found", nil)
	}
	return response.Success(c, fiber.StatusOK, "Successfully retrieved user data", user)
}
