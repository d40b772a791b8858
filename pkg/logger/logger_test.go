package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)

	log.Debug("hello")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "medsched", entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "loud", Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Output: &buf})
	require.NoError(t, err)

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "admin")
	assert.Equal(t, "req-1", RequestID(ctx))

	FromContext(ctx, base).Info("scoped")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"user_id":"admin"`)

	assert.Same(t, base, FromContext(context.Background(), base))
}
