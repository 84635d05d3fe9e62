package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tunecrate/auth/pkg/slogx"
)

func TestNewWithWriterEmitsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.NewWithWriter(slogx.Config{
		Service: "auth-service",
		Version: "v0.0.0-test",
		Env:     "prod",
		Level:   "info",
		Format:  "json",
	}, &buf)

	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "auth-service", record["service"])
	require.Equal(t, "v0.0.0-test", record["version"])
	require.Equal(t, "prod", record["env"])
	require.Equal(t, "hello", record["msg"])
}

func TestNewWithWriterHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.NewWithWriter(slogx.Config{Level: "warn", Format: "text"}, &buf)

	logger.Info("dropped")
	require.Zero(t, buf.Len())

	logger.Warn("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("WARNING"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("nonsense"))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.NewWithWriter(slogx.Config{Format: "text"}, &buf)

	ctx := slogx.WithContext(context.Background(), logger)
	require.Same(t, logger, slogx.FromContext(ctx))

	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))
}
