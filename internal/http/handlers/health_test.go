package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyz(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := handlers.NewHealthHandler(map[string]handlers.Check{"db": up, "redis": up, "skipped": nil})
	w := do(t, setupRouter(http.MethodGet, "/readyz", h.Readyz, 0), http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w)
	assert.Equal(t, "ready", got["status"])
	assert.Equal(t, map[string]any{"db": "up", "redis": "up"}, got["checks"])

	h = handlers.NewHealthHandler(map[string]handlers.Check{"db": up, "redis": down})
	w = do(t, setupRouter(http.MethodGet, "/readyz", h.Readyz, 0), http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode(t, w)["checks"].(map[string]any)["redis"])
}

func TestReadyzWhileDraining(t *testing.T) {
	draining := false
	h := handlers.NewHealthHandler(nil).WithDraining(func() bool { return draining })
	r := setupRouter(http.MethodGet, "/readyz", h.Readyz, 0)

	w := do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, w.Code)

	draining = true
	w = do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "shutting_down", decode(t, w)["status"])
}

func TestHealthz(t *testing.T) {
	h := handlers.NewHealthHandler(nil)
	w := do(t, setupRouter(http.MethodGet, "/healthz", h.Healthz, 0), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
