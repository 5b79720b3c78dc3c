package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"
	"agrocore-service/pkg/database"
	"agrocore-service/pkg/jwtutil"
	"agrocore-service/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "secret123"

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test", ExpirationHours: 1})
	identity.Init(64, time.Minute)
	Configure(&config.Config{
		Cache:     config.CacheConfig{DashboardSize: 16, DashboardTTL: time.Minute},
		Scheduler: config.SchedulerConfig{ServiceDueHorizonDays: 14},
	})

	e := echo.New()
	e.Validator = validator.New()
	RegisterRoutes(e)

	return &testEnv{t: t, e: e, db: db}
}

// user inserts an account and returns it with a valid token
func (env *testEnv) user(email string, role model.Role, companyID *uint) (model.User, string) {
	env.t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(env.t, err)

	u := model.User{
		Email:          email,
		Username:       strings.Split(email, "@")[0],
		Password:       string(hashed),
		Role:           role,
		CompanyID:      companyID,
		LeaveDaysTotal: model.DefaultLeaveDays,
	}
	require.NoError(env.t, env.db.Create(&u).Error)

	token, err := jwtutil.GenerateToken(u.Email, u.ID)
	require.NoError(env.t, err)
	return u, token
}

// company creates a company with a Boss and returns the boss token
func (env *testEnv) company(name, bossEmail string) (model.Company, model.User, string) {
	env.t.Helper()

	boss, token := env.user(bossEmail, model.RoleUser, nil)
	co := model.Company{Name: name, CreatedByUserID: boss.ID}
	require.NoError(env.t, env.db.Create(&co).Error)
	require.NoError(env.t, env.db.Model(&boss).Updates(map[string]interface{}{
		"company_id": co.ID,
		"role":       model.RoleBoss,
	}).Error)
	return co, boss, token
}

func (env *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func body(rec *httptest.ResponseRecorder) gjson.Result {
	return gjson.Parse(rec.Body.String())
}

func uptr(v uint) *uint { return &v }

