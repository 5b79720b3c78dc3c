package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"agrocore-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactAndSupportReply(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.user("farmer@mail.io", model.RoleUser, nil)
	_, itToken := env.user("it@agro.io", model.RoleITSupport, nil)
	_, adminToken := env.user("admin@agro.io", model.RoleSystemAdmin, nil)

	rec := env.do(http.MethodPost, "/contact", "", echo.Map{"full_name": "Farmer", "email": "farmer@mail.io", "message": "Help!"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := body(rec).Get("id").Uint()

	rec = env.do(http.MethodPost, "/contact", "", echo.Map{"full_name": "Farmer", "email": "farmer@mail.io", "message": "Again"})
	require.Equal(t, http.StatusCreated, rec.Code)
	second := body(rec).Get("id").Uint()

	rec = env.do(http.MethodPost, "/contact", "", echo.Map{"full_name": "Someone", "email": "else@mail.io", "message": "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/contact", "", echo.Map{"full_name": "Long", "email": "l@mail.io", "message": strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Support inbox is restricted
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/support/messages", userToken, nil).Code)

	rec = env.do(http.MethodGet, "/api/support/messages", itToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), body(rec).Get("#").Int())

	rec = env.do(http.MethodPost, fmt.Sprintf("/api/support/messages/%d/reply", first), itToken, echo.Map{"content": "On it"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IT Support", body(rec).Get("replied_by").String())
	assert.True(t, body(rec).Get("is_replied").Bool())

	rec = env.do(http.MethodPost, fmt.Sprintf("/api/support/messages/%d/reply", second), adminToken, echo.Map{"content": "Done"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Admin", body(rec).Get("replied_by").String())

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/support/messages/999/reply", adminToken, echo.Map{"content": "?"}).Code)

	rec = env.do(http.MethodGet, "/api/support/messages?unreplied=true", adminToken, nil)
	assert.Equal(t, int64(1), body(rec).Get("#").Int())

	// Inbox shows only the caller's own messages, newest first
	rec = env.do(http.MethodGet, "/api/inbox", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := body(rec)
	require.Equal(t, int64(2), res.Get("#").Int())
	assert.Equal(t, second, res.Get("0.id").Uint())
	assert.Equal(t, "Done", res.Get("0.reply_message").String())
}
