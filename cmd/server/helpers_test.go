package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/mocks"
	"github.com/stretchr/testify/require"
)

const testFrontendURL = "http://localhost:3001"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   5000,
			LogLevel:               "error",
			PortRetryAttempts:      3,
			ShutdownTimeoutSeconds: 2,
			FrontendURL:            testFrontendURL,
		},
		Database: config.DatabaseConfig{URL: "postgres://localhost:5432/tasks_test"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
			TokenLifetimeMinutes: 60,
			BcryptCost:           4,
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires the application around in-memory stores.
func newTestApplication(t *testing.T) *application {
	t.Helper()
	app, err := newApplicationWithStores(testConfig(), quietLogger(), mocks.NewMockUserStore(), mocks.NewMockTaskStore())
	require.NoError(t, err)
	t.Cleanup(app.hub.Close)
	return app
}

// doJSON sends a JSON request to baseURL and decodes the response into out
// when out is non-nil. It returns the status code.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
