package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/config"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriters(config.LogConfig{}, &buf)
	logger.Debug("hidden")
	logger.Info("shown", zap.String("doc", "review"))
	logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "review")
	assert.NotContains(t, out, "logging_test.go", "caller only in debug mode")

	buf.Reset()
	logger = NewWithWriters(config.LogConfig{Debug: true}, &buf)
	logger.Debug("visible")
	logger.Sync()
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "logging_test.go")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriters(config.LogConfig{Format: config.LogFormatJSON}, &buf)
	logger.Warn("degraded", zap.String("item", "hola"))
	logger.Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "degraded", entry["msg"])
	assert.Equal(t, "hola", entry["item"])
	assert.Equal(t, "spaced-review", entry["logger"])
}

func TestFansOutToAllWriters(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewWithWriters(config.LogConfig{}, &a, &b)
	logger.Warn("degraded")
	logger.Sync()
	assert.Contains(t, a.String(), "degraded")
	assert.Contains(t, b.String(), "degraded")
}
