package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradelink/internal/config"
	"tradelink/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:   "test",
		LogLevel: "error",
		Server:   config.ServerConfig{Port: ":8081"},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: "file:main_test?mode=memory&cache=shared"},
		Auth:     config.AuthConfig{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour},
		Uploads:  config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Redis:    config.RedisConfig{TTL: time.Minute},
	}
}

func TestNewApp_HealthAndAuthGate(t *testing.T) {
	app, cleanup, err := newApp(context.Background(), testConfig(t), logger.Nop())
	require.NoError(t, err)
	defer cleanup()

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "up", body["database"])
		assert.Equal(t, "disabled", body["cache"])
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/listings/my-products", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("PublicListings", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/listings/get-by-type/service", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.Contains(string(raw), "tradelink_http_requests_total"))
	})
}

func TestNewApp_BadDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mongo"

	_, cleanup, err := newApp(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	cleanup()
}
