package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/handler"
)

func TestHealthHandler(t *testing.T) {
	t.Setenv("APP_VERSION", "")
	var redisErr error
	h := handler.NewHealthHandler(zap.NewNop(),
		handler.HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
		handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return redisErr }},
	)

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	live := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "UP", live.Status)
	assert.Equal(t, "unknown", live.Version)

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.HealthResponse](t, rec).Checks, 2)

	redisErr = errors.New("dial tcp: connection refused")
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	ready := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "DOWN", ready.Status)
	assert.Equal(t, "UP", ready.Checks["database"].Status)
	assert.Equal(t, handler.Check{Status: "DOWN", Message: "Cannot connect to redis"}, ready.Checks["redis"])
}
