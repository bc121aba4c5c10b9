// Package logger provides structured logging for the application,
// wrapping go.uber.org/zap behind a small stable surface.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a typed key/value pair attached to a log entry.
type Field = zap.Field

// Config controls logger construction.
type Config struct {
	Level  string // "debug", "info", "warn", or "error"
	Format string // "json" or "console"
}

// Logger is a leveled, named, structured logger.
type Logger struct {
	zl *zap.Logger
}

// New creates a logger with the given level and output format.
func New(cfg Config) (*Logger, error) {
	var level zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level: %q", cfg.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return &Logger{zl: zap.New(core)}, nil
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Named returns a copy of the logger with the given name segment appended.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name)}
}

// With returns a copy of the logger with the given fields attached to
// every subsequent entry.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{zl: l.zl.With(fields...)}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.zl.Debug(msg, fields...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.zl.Info(msg, fields...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.zl.Warn(msg, fields...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.zl.Error(msg, fields...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// String constructs a string field.
func String(key, val string) Field { return zap.String(key, val) }

// Int constructs an int field.
func Int(key string, val int) Field { return zap.Int(key, val) }

// Int64 constructs an int64 field.
func Int64(key string, val int64) Field { return zap.Int64(key, val) }

// Float64 constructs a float64 field.
func Float64(key string, val float64) Field { return zap.Float64(key, val) }

// Bool constructs a bool field.
func Bool(key string, val bool) Field { return zap.Bool(key, val) }

// Duration constructs a duration field.
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Time constructs a time field.
func Time(key string, val time.Time) Field { return zap.Time(key, val) }

// Any constructs a field from an arbitrary value.
func Any(key string, val interface{}) Field { return zap.Any(key, val) }

// Error constructs a field from an error value.
func Error(err error) Field { return zap.Error(err) }
