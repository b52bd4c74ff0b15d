package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	Use(New(core))
	t.Cleanup(func() { Use(nil) })
	return logs
}

func TestInit(t *testing.T) {
	InitFor("development")
	assert.NotNil(t, log)

	InitFor("production")
	assert.NotNil(t, log)
	Use(nil)
}

func TestInfo(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Info("test message", "slot_id", "s-1")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "test message", entry.Message)
	assert.Equal(t, "s-1", entry.ContextMap()["slot_id"])
}

func TestError(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Error("test error")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestDebugFilteredAtInfo(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Debug("hidden")
	Debugf("hidden %s", "too")

	assert.Equal(t, 0, logs.Len())
}

func TestDebug(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Debug("test debug")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "test debug", logs.All()[0].Message)
}

func TestFormatted(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Infof("test %s", "message")
	Warnf("warn %d", 2)
	Errorf("test %s", "error")

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "test message", logs.All()[0].Message)
	assert.Equal(t, "warn 2", logs.All()[1].Message)
	assert.Equal(t, "test error", logs.All()[2].Message)
}

func TestWithError(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	WithError(assert.AnError).Info("test with error")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap(), "error")
}

func TestWithFields(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	WithFields(map[string]interface{}{
		"key1": "value1",
		"key2": 123,
	}).Info("test with fields")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "value1", ctx["key1"])
	assert.EqualValues(t, 123, ctx["key2"])
}
