package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warning ", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "Entry conditions met", map[string]interface{}{"size": 40, "atr": 2.5, "strategy": "sma"})
	l.Error(ctx, errors.New("boom"), "Run failed", map[string]interface{}{"a": 1}, map[string]interface{}{"a": 2, "b": 3})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "[INFO] Entry conditions met | atr=2.5 size=40 strategy=sma"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "[ERROR] Run failed | error: boom | a=2 b=3"), lines[1])
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	l.Debug(ctx, "Skipping malformed bar", map[string]interface{}{"index": 3})
	l.Warn(ctx, "Slow fetch")
	l.Error(ctx, errors.New("boom"), "Run failed", map[string]interface{}{"variant": "nyse_session"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(3), entries[0].ContextMap()["index"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, "Run failed", entries[2].Message)
	assert.Equal(t, "nyse_session", entries[2].ContextMap()["variant"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.NoError(t, l.Sync())
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger(LevelWarn)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
