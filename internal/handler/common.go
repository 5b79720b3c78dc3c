package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/middleware"
	"agrocore-service/pkg/database"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dateLayout is the calendar date format used in requests and responses
const dateLayout = "2006-01-02"

// errResponded signals that a helper has already written the response
var errResponded = errors.New("response already written")

// currentScope returns the scope resolved by the auth middleware
func currentScope(c echo.Context) access.Scope {
	s, _ := middleware.GetScope(c)
	return s
}

// bindAndValidate decodes the request body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	log := logger.FromContext(c)
	if err := c.Bind(req); err != nil {
		log.Warn("Failed to parse request", zap.Error(err))
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		return errResponded
	}
	if err := c.Validate(req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		return errResponded
	}
	return nil
}

// paramID parses a numeric path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
		return 0, errResponded
	}
	return uint(id), nil
}

// done converts errResponded into a nil handler result
func done(err error) error {
	if errors.Is(err, errResponded) {
		return nil
	}
	return err
}

// authorize writes a 403 when the scope may not perform the action
func authorize(c echo.Context, domain string, a access.Action) error {
	scope := currentScope(c)
	if err := scope.Authorize(a); err != nil {
		logger.FromContext(c).Warn("Action denied",
			zap.String("domain", domain),
			zap.String("action", string(a)),
			zap.String("role", scope.Role))
		prometheus.RecordAccessDenied(domain, string(a))
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to " + string(a) + " this record"})
		return errResponded
	}
	return nil
}

// findScoped loads a tenant-owned record by id inside the caller's scope.
// Records outside the scope are reported as not found.
func findScoped(c echo.Context, dest interface{}, id uint, what string) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	err := currentScope(c).Apply(dbFor(c)).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn(what+" not found in scope", zap.Uint("id", id))
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
		return errResponded
	}
	if err != nil {
		log.Error("Failed to load "+what, zap.Uint("id", id), zap.Error(err))
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load " + what})
		return errResponded
	}
	return nil
}

// internalError logs err and writes a generic 500
func internalError(c echo.Context, msg string, err error, fields ...zap.Field) error {
	logger.FromContext(c).Error(msg, append(fields, zap.Error(err))...)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// dbFor returns the database handle bound to the request context
func dbFor(c echo.Context) *gorm.DB {
	return database.GetDB().WithContext(c.Request().Context())
}
