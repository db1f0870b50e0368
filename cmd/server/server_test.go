package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portOf(t *testing.T, ln net.Listener) int {
	t.Helper()
	addr, ok := ln.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}

func TestListenWithRetry_FallsBackWhenPortBusy(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := portOf(t, busy)

	ln, err := listenWithRetry(context.Background(), busyPort, 5, quietLogger())
	require.NoError(t, err)
	defer ln.Close()

	bound := portOf(t, ln)
	assert.Greater(t, bound, busyPort)
	assert.Less(t, bound, busyPort+5)
}

func TestListenWithRetry_GivesUpAfterAttempts(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	_, err = listenWithRetry(context.Background(), portOf(t, busy), 1, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no free port after 1 attempts")
}

func TestListenWithRetry_FreePort(t *testing.T) {
	ln, err := listenWithRetry(context.Background(), 0, 1, quietLogger())
	require.NoError(t, err)
	defer ln.Close()
	assert.NotZero(t, portOf(t, ln))
}

func TestServe_GracefulShutdown(t *testing.T) {
	app := newTestApplication(t)

	var migrations atomic.Int32
	app.migrate = func(ctx context.Context) error {
		migrations.Add(1)
		return nil
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return migrations.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = app.hub.Emit("anyone", "taskCreated", nil)
	assert.Error(t, err)
	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestMigrateWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := migrateWithRetry(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, time.Millisecond, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := migrateWithRetry(ctx, func(ctx context.Context) error {
			return errors.New("connection refused")
		}, time.Millisecond, quietLogger())
		require.Error(t, err)
	})
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{"-migrate", "status", "-config", "dev.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "status", opts.migrateCmd)
	assert.Equal(t, "dev.yaml", opts.configPath)

	opts, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.migrateCmd)

	_, err = parseFlags([]string{"-unknown"})
	assert.Error(t, err)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 6123
  log_level: debug
  port_retry_attempts: 2
  shutdown_timeout_seconds: 3
  frontend_url: http://localhost:3001
database:
  url: postgres://localhost:5432/tasks
auth:
  jwt_secret: test-jwt-secret-that-is-32-chars-long
  token_lifetime_minutes: 30
  bcrypt_cost: 4
`), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6123, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Server.PortRetryAttempts)
	assert.Equal(t, 30, cfg.Auth.TokenLifetimeMinutes)
}

func TestRun_InvalidConfigFile(t *testing.T) {
	err := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
