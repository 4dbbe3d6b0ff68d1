package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"sessionTrader/internal/ports"
)

// StdLogger writes one line per event through a *log.Logger:
//
//	2024/01/02 15:04:05.000000 [WARN] Skipping malformed bar | index=3 strategy=nye_reversion
type StdLogger struct {
	logger *log.Logger
	level  LogLevel
}

var _ ports.Logger = (*StdLogger)(nil)

// LogLevel orders severities; events below the logger's level are dropped.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel is case-insensitive and accepts "warning" for LevelWarn.
// Unrecognized names fall back to LevelInfo.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn
	}
	for lvl, n := range levelNames {
		if n == name {
			return LogLevel(lvl)
		}
	}
	return LevelInfo
}

// NewStdLogger logs to stderr.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewStdLoggerTo(os.Stderr, level)
}

func NewStdLoggerTo(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

func (l *StdLogger) log(level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&sb, " | error: %v", err)
	}

	merged := mergeFields(fields)
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, merged[k])
		}
	}

	l.logger.Println(sb.String())
}

// mergeFields flattens the variadic field maps; later maps win on duplicate keys.
func mergeFields(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) == 1 {
		return fields[0]
	}
	merged := make(map[string]interface{})
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

func (l *StdLogger) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, nil, fields)
}

func (l *StdLogger) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, err, fields)
}
