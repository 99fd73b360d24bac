package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelWarn, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestDefaultLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.Info("skipped %d frames in %s", 3, "worker-1")

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "skipped 3 frames in worker-1")
}

func TestDefaultLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.WithField("worker", 2).Info("range folded")

	assert.Contains(t, buf.String(), "worker=2")
	assert.Contains(t, buf.String(), "range folded")

	// Parent logger is unaffected
	buf.Reset()
	logger.Info("no fields")
	assert.NotContains(t, buf.String(), "worker=2")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestNullLogger_Discards(t *testing.T) {
	var logger Logger = &NullLogger{}

	// Must not panic and must stay chainable
	logger.WithField("k", "v").WithFields(map[string]interface{}{"a": 1}).Warn("ignored")
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
