package middleware

import (
	"errors"
	"net/http"
	"strings"

	"agrocore-service/internal/access"
	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/database"
	"agrocore-service/pkg/jwtutil"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// scopeKey is the echo context key holding the resolved access.Scope
const scopeKey = "scope"

// AuthMiddleware validates the bearer token and resolves the caller's scope
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Role and company come from the store, not the token
		scope, err := identity.Resolve(database.GetDB(), claims.UserID)
		switch {
		case errors.Is(err, identity.ErrUnknownUser):
			prometheus.RecordAuthError("unknown_user")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		case errors.Is(err, identity.ErrLocked):
			prometheus.RecordAuthError("locked")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is locked"})
		case err != nil:
			log.Error("Failed to resolve principal", zap.Uint("user_id", claims.UserID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve user"})
		}

		c.Set(scopeKey, scope)
		c.Set("user_id", scope.UserID)

		ctxLogger := log.With(zap.Uint("user_id", scope.UserID), zap.String("role", scope.Role))
		if scope.CompanyID != nil {
			ctxLogger = ctxLogger.With(zap.Uint("company_id", *scope.CompanyID))
		}
		logger.SetContextLogger(c, ctxLogger)

		return next(c)
	}
}

// GetScope returns the scope stored by AuthMiddleware
func GetScope(c echo.Context) (access.Scope, bool) {
	s, ok := c.Get(scopeKey).(access.Scope)
	return s, ok
}

// SetScope stores a scope in the context
func SetScope(c echo.Context, s access.Scope) {
	c.Set(scopeKey, s)
}

// RequireRole rejects principals holding none of the given roles
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, ok := GetScope(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			if !scope.HasRole(roles...) {
				logger.FromContext(c).Warn("Role check failed",
					zap.String("role", scope.Role),
					zap.Strings("required", roles))
				prometheus.RecordAccessDenied("route", "role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}

// RequireCompany rejects principals without a company
func RequireCompany(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		scope, ok := GetScope(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		if scope.CompanyID == nil {
			prometheus.RecordAccessDenied("route", "no_company")
			return c.JSON(http.StatusForbidden, echo.Map{"error": access.ErrNoCompany.Error()})
		}
		return next(c)
	}
}
