package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban-backend/internal/api/v1/handlers"
	"kanban-backend/internal/models"
)

func TestLoginSuccess(t *testing.T) {
	e := newEnv(t, nil)

	code, envelope := e.do(t, "POST", "/api/auth/login", "", handlers.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Login successful", message(envelope))

	data := decodeData[handlers.LoginResponse](t, envelope)
	require.NotEmpty(t, data.Token)
	require.NotNil(t, data.User)
	assert.Equal(t, "admin", data.User.Username)

	claims, err := e.tokens.Validate(data.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	// The password hash must never appear in a response.
	assert.NotContains(t, string(envelope["data"]), "password")
}

// Unknown username and wrong password must be indistinguishable.
func TestLoginFailureIsUniform(t *testing.T) {
	e := newEnv(t, nil)

	codeA, envA := e.do(t, "POST", "/api/auth/login", "", handlers.LoginRequest{
		Username: "nobody", Password: "admin123",
	})
	codeB, envB := e.do(t, "POST", "/api/auth/login", "", handlers.LoginRequest{
		Username: "admin", Password: "wrong",
	})

	assert.Equal(t, fiber.StatusUnauthorized, codeA)
	assert.Equal(t, fiber.StatusUnauthorized, codeB)
	assert.Equal(t, "Invalid credentials", message(envA))
	assert.Equal(t, envA, envB)
}

func TestLoginMissingFields(t *testing.T) {
	e := newEnv(t, nil)

	code, envelope := e.do(t, "POST", "/api/auth/login", "", handlers.LoginRequest{Password: "x"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Username is required", message(envelope))

	code, envelope = e.do(t, "POST", "/api/auth/login", "", handlers.LoginRequest{Username: "admin"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Password is required", message(envelope))
}

func TestLogout(t *testing.T) {
	e := newEnv(t, nil)

	code, envelope := e.do(t, "POST", "/api/auth/logout", e.bearer(t), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Successfully logout from the system", message(envelope))
	assert.True(t, decodeData[bool](t, envelope))
}

func TestLogoutRequiresToken(t *testing.T) {
	e := newEnv(t, nil)

	code, envelope := e.do(t, "POST", "/api/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Authentication required", message(envelope))
}

func TestMe(t *testing.T) {
	e := newEnv(t, nil)

	code, envelope := e.do(t, "GET", "/api/auth/me", e.bearer(t), nil)
	require.Equal(t, fiber.StatusOK, code)

	user := decodeData[models.User](t, envelope)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "Administrator", user.Name)
}

// A syntactically valid token whose user row is gone yields success with
// data null, matching the single-resource miss convention.
func TestMeMissingUser(t *testing.T) {
	e := newEnv(t, nil)
	e.users.users = nil

	code, envelope := e.do(t, "GET", "/api/auth/me", e.bearer(t), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "User not found", message(envelope))
	assert.JSONEq(t, "null", string(envelope["data"]))
}
