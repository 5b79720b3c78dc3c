package handler

import (
	"net/http"
	"testing"

	"agrocore-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", echo.Map{
		"email":            "ann@farm.io",
		"password":         "hunter22",
		"confirm_password": "hunter22",
		"first_name":       "Ann",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.RoleUser, body(rec).Get("role").String())
	assert.Equal(t, "ann@farm.io", body(rec).Get("username").String())

	rec = env.do(http.MethodPost, "/auth/register", "", echo.Map{
		"email":            "ann@farm.io",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "ann@farm.io", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := body(rec).Get("token").String()
	assert.NotEmpty(t, token)

	rec = env.do(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", body(rec).Get("first_name").String())
	assert.Equal(t, int64(20), body(rec).Get("leave_days_remaining").Int())
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload echo.Map
		want    string
	}{
		{"short password", echo.Map{"email": "a@b.io", "password": "123", "confirm_password": "123"}, "password must be at least 6"},
		{"mismatch", echo.Map{"email": "a@b.io", "password": "123456", "confirm_password": "654321"}, "confirm_password must match password"},
		{"bad email", echo.Map{"email": "nope", "password": "123456", "confirm_password": "123456"}, "email must be a valid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/auth/register", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, body(rec).Get("error").String(), tt.want)
		})
	}
}

func TestLoginByUsernameAndFailures(t *testing.T) {
	env := newTestEnv(t)
	env.user("bob@farm.io", model.RoleUser, nil)
	locked, _ := env.user("lock@farm.io", model.RoleUser, nil)
	require.NoError(t, env.db.Model(&locked).Update("locked", true).Error)

	rec := env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "bob", "password": testPassword})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "bob@farm.io", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", body(rec).Get("error").String())

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "nobody@farm.io", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "lock@farm.io", "password": testPassword})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("cara@farm.io", model.RoleUser, nil)

	rec := env.do(http.MethodPatch, "/api/users/profile", token, echo.Map{"first_name": "Cara", "last_name": "Field"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cara Field", body(rec).Get("full_name").String())

	rec = env.do(http.MethodPost, "/api/users/change-password", token, echo.Map{"current_password": "nope", "new_password": "newpass1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/users/change-password", token, echo.Map{"current_password": testPassword, "new_password": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "cara@farm.io", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/plants", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", nil).Code)
}

func TestEmailsMatchRegardlessOfCase(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", echo.Map{
		"email":            "farmer@mail.io",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/auth/register", "", echo.Map{
		"email":            " Farmer@Mail.io ",
		"username":         "farmer2",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", echo.Map{"login": "FARMER@mail.io", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "farmer@mail.io", body(rec).Get("user.email").String())

	co, _, bossToken := env.company("Acme", "boss@acme.io")
	_, bobToken := env.user("bob@x.io", model.RoleUser, nil)

	rec = env.do(http.MethodPost, "/api/staff/invitations", bossToken, echo.Map{"email": "Bob@X.io", "role": "Employee"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "bob@x.io", body(rec).Get("email").String())
	token := body(rec).Get("token").String()

	// Re-inviting with different case returns the pending invitation
	rec = env.do(http.MethodPost, "/api/staff/invitations", bossToken, echo.Map{"email": "BOB@x.io", "role": "Employee"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, body(rec).Get("token").String())

	rec = env.do(http.MethodGet, "/api/invitations", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), body(rec).Get("#").Int())

	rec = env.do(http.MethodPost, "/api/invitations/accept", bobToken, echo.Map{"token": token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(co.ID), body(rec).Get("company_id").Int())
}
