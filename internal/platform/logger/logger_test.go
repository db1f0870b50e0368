// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name       string
		level      string
		debugShown bool
		infoShown  bool
	}{
		{name: "debug", level: "debug", debugShown: true, infoShown: true},
		{name: "info", level: "info", debugShown: false, infoShown: true},
		{name: "upper case", level: "WARN", debugShown: false, infoShown: false},
		{name: "invalid falls back to info", level: "verbose", debugShown: false, infoShown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tt.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")

			assert.Equal(t, tt.debugShown, strings.Contains(buf.String(), "debug message"))
			assert.Equal(t, tt.infoShown, strings.Contains(buf.String(), "info message"))
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	_, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, buf)
	require.NoError(t, err)

	slog.Info("through default", "key", "value")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "through default", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.NewTestLogger()
	fallback, fallbackBuf := logger.NewTestLogger()

	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
	logger.FromContextOrDefault(ctx, fallback).Info("scoped")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])

	logger.FromContextOrDefault(context.Background(), fallback).Info("unscoped")
	assert.True(t, strings.Contains(fallbackBuf.String(), "unscoped"))

	assert.NotNil(t, logger.FromContext(context.Background()))
}
