package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareAttachesRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	e := echo.New()
	e.Use(Middleware(base))
	e.GET("/ping", func(c echo.Context) error {
		FromContext(c).Info("inside handler")
		FromStdContext(c.Request().Context()).Info("from std context")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	entries := logs.All()
	if assert.Len(t, entries, 3) {
		for _, entry := range entries {
			assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
		}
		assert.Equal(t, "HTTP Request", entries[2].Message)
		assert.EqualValues(t, http.StatusNoContent, entries[2].ContextMap()["status"])
	}
}

func TestFromStdContextFallsBack(t *testing.T) {
	assert.NotNil(t, FromStdContext(context.Background()))
}
