package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agrocore-service/internal/access"
	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"
	"agrocore-service/pkg/database"
	"agrocore-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Company{}, &model.User{}))
	database.DB = db
	identity.Init(16, 0)
	identity.Purge()
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	return db
}

func serve(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(RequestIDKey).(string))
	})

	rec := serve(e, "")
	assert.NotEmpty(t, rec.Header().Get(RequestIDKey))
	assert.Equal(t, rec.Header().Get(RequestIDKey), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDKey))
}

func TestAuthMiddleware(t *testing.T) {
	db := setup(t)

	company := model.Company{Name: "Farm"}
	require.NoError(t, db.Create(&company).Error)
	user := model.User{Email: "m@farm.io", Username: "m", Role: model.RoleManager, CompanyID: &company.ID}
	require.NoError(t, db.Create(&user).Error)
	locked := model.User{Email: "x@farm.io", Username: "x", Role: model.RoleUser, Locked: true}
	require.NoError(t, db.Create(&locked).Error)

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		s, ok := GetScope(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"role": s.Role, "company_id": *s.CompanyID})
	}, AuthMiddleware)

	assert.Equal(t, http.StatusUnauthorized, serve(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, "garbage").Code)

	// Token says User; store says Manager
	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	require.NoError(t, err)
	rec := serve(e, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"Manager"`)

	token, err = jwtutil.GenerateToken(locked.Email, locked.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(e, token).Code)

	token, err = jwtutil.GenerateToken("gone@farm.io", 9999)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(e, token).Code)
}

func TestRequireRoleAndCompany(t *testing.T) {
	companyID := uint(1)
	tests := []struct {
		name  string
		scope *access.Scope
		mw    echo.MiddlewareFunc
		want  int
	}{
		{"no scope", nil, RequireRole(model.RoleBoss), http.StatusUnauthorized},
		{"wrong role", &access.Scope{UserID: 1, Role: model.RoleEmployee}, RequireRole(model.RoleBoss, model.RoleManager), http.StatusForbidden},
		{"right role", &access.Scope{UserID: 1, Role: model.RoleManager}, RequireRole(model.RoleBoss, model.RoleManager), http.StatusOK},
		{"no company", &access.Scope{UserID: 1, Role: model.RoleUser}, RequireCompany, http.StatusForbidden},
		{"with company", &access.Scope{UserID: 1, Role: model.RoleEmployee, CompanyID: &companyID}, RequireCompany, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			scope := tt.scope
			e.GET("/", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if scope != nil {
						SetScope(c, *scope)
					}
					return next(c)
				}
			}, tt.mw)

			assert.Equal(t, tt.want, serve(e, "").Code)
		})
	}
}
