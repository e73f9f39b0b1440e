package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { Init("info", "json") })

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, SessionIDKey, "sess-1")
	Error(ctx, "generation failed", errors.New("boom"), "provider", "openai")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "generation failed", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "sess-1", line["session_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "openai", line["provider"])
	assert.NotContains(t, line, "trace_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
