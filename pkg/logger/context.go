package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey int

const (
	// loggerKey is the key used to store the logger in the context
	loggerKey contextKey = iota
)

// contextKeyLogger is the echo context key holding the request logger
const contextKeyLogger = "logger"

// WithLogger returns a copy of the context with the logger included
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context
func FromContext(c echo.Context) *zap.Logger {
	// Try to extract from Echo context first
	if l, ok := c.Get(contextKeyLogger).(*zap.Logger); ok {
		return l
	}

	// Then try to extract from Go context
	return FromStdContext(c.Request().Context())
}

// FromStdContext retrieves the logger from a plain context, falling back to the global one
func FromStdContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// SetContextLogger replaces the request logger held by the echo context
func SetContextLogger(c echo.Context, logger *zap.Logger) {
	c.Set(contextKeyLogger, logger)
	c.SetRequest(c.Request().WithContext(WithLogger(c.Request().Context(), logger)))
}
