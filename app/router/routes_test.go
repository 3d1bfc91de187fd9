package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/config"
	"go.uber.org/zap"
)

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:      1024 * 1024,
			TrustedProxies: []string{"10.0.0.0/8"},
			ProxyHeader:    "X-Real-IP",
		},
		Deployment: config.DeploymentConfig{
			Environment: "test",
			Version:     "1.2.3",
			CommitHash:  "abc1234",
			BuildTime:   "2026-01-02T03:04:05Z",
		},
	}
}

func getHealth(t *testing.T, r *FiberRouter) (*http.Response, map[string]any) {
	t.Helper()
	r.app.Get("/health", r.healthCheck)
	resp, err := r.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	return resp, data
}

func TestNewFiberRouterTrustsConfiguredProxies(t *testing.T) {
	r := NewFiberRouter(testConfig(), Handlers{}, nil, nil, zap.NewNop())

	cfg := r.GetApp().Config()
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustProxyConfig.Proxies)
	assert.Equal(t, "X-Real-IP", cfg.ProxyHeader)

	noProxies := testConfig()
	noProxies.Server.TrustedProxies = nil
	assert.False(t, NewFiberRouter(noProxies, Handlers{}, nil, nil, zap.NewNop()).GetApp().Config().TrustProxy)
}

func TestHealthCheck(t *testing.T) {
	t.Run("ReportsBuildMetadata", func(t *testing.T) {
		checks := map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		}
		r := NewFiberRouter(testConfig(), Handlers{}, nil, checks, zap.NewNop())

		resp, data := getHealth(t, r)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "1.2.3", data["version"])
		assert.Equal(t, "abc1234", data["commit"])
		assert.Equal(t, "2026-01-02T03:04:05Z", data["built_at"])
		assert.Equal(t, map[string]any{"database": "ok"}, data["checks"])
	})

	t.Run("DegradedWhenDependencyFails", func(t *testing.T) {
		checks := map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"cache":    func(context.Context) error { return errors.New("connection refused") },
		}
		r := NewFiberRouter(testConfig(), Handlers{}, nil, checks, zap.NewNop())

		resp, data := getHealth(t, r)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, map[string]any{"database": "ok", "cache": "connection refused"}, data["checks"])
	})
}
