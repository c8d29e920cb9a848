package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level LogLevel) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{level: level, sugar: zap.New(core).Sugar()}, logs
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" trace "))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestTraceOnlyAtTraceLevel(t *testing.T) {
	l, logs := observed(LogLevelDebug)
	l.Trace("[Loader] %s columns: %s", "x.csv", "a, b")
	l.Debug("visible")
	assert.Equal(t, 1, logs.Len())

	l, logs = observed(LogLevelTrace)
	l.Trace("[Loader] %s columns: %s", "x.csv", "a, b")
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "[TRACE] [Loader] x.csv columns: a, b", entries[0].Message)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	}
}

func TestLevelsFilterBelowThreshold(t *testing.T) {
	l, logs := observed(LogLevelWarn)
	l.Info("dropped")
	l.Debug("dropped")
	l.Warn("kept %d", 1)
	l.Error("kept %d", 2)
	assert.Equal(t, 2, logs.Len())
}
