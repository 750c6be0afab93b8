package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := Logger()
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(previous) })
	return &buf
}

func TestFromContextAddsRequestID(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestFromContextWithoutRequestID(t *testing.T) {
	buf := captureLogs(t)

	FromContext(context.Background()).Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["request_id"]
	assert.False(t, ok)
}

func TestWithFields(t *testing.T) {
	buf := captureLogs(t)

	WithFields("component", "store").Warn("load failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "WARN", entry["level"])
}
