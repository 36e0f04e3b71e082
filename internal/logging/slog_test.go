package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_WritesLevelsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := context.Background()
	l.Debug(ctx, "dbg", "k", "v")
	l.Info(ctx, "inf")
	l.Warn(ctx, "wrn")
	l.Error(ctx, "err")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "msg=dbg")
	require.Contains(t, out, "k=v")
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	child := l.With("component", "session")
	child.Info(context.Background(), "hello")

	require.Contains(t, buf.String(), "component=session")
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Info(context.Background(), "ignored")
}
