package logger

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sessionTrader/internal/ports"
)

// ZapLogger implements ports.Logger on top of a structured zap logger.
type ZapLogger struct {
	*zap.Logger
}

var _ ports.Logger = (*ZapLogger)(nil)

// NewZapLogger creates a JSON logger writing to stderr at the given level.
func NewZapLogger(level LogLevel) (*ZapLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapLevel(level))
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{Logger: zapLogger}, nil
}

// NewZapLoggerFrom wraps an existing zap logger, e.g. one built with zaptest or zap.NewNop.
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{Logger: l}
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []map[string]interface{}) []zap.Field {
	merged := mergeFields(fields)
	if len(merged) == 0 {
		return nil
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, merged[k]))
	}
	return out
}

// Debug logs a message at Debug level.
func (l *ZapLogger) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.Logger.Debug(msg, toZapFields(fields)...)
}

// Info logs a message at Info level.
func (l *ZapLogger) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.Logger.Info(msg, toZapFields(fields)...)
}

// Warn logs a message at Warning level.
func (l *ZapLogger) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.Logger.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message at Error level.
func (l *ZapLogger) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.Logger.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

// Sync flushes any buffered log entries
func (l *ZapLogger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}
	return nil
}
