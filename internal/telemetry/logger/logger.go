package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	Sync() error
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `koanf:"level"`
	// Format is the output format (json, console).
	Format string `koanf:"format"`
	// File enables rotating file output when non-empty.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
	// AddCaller annotates entries with the calling file and line.
	AddCaller bool `koanf:"add_caller"`

	// Output overrides the destination when File is empty (defaults to os.Stderr).
	Output io.Writer `koanf:"-"`
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 28,
		Compress:   true,
		Output:     os.Stderr,
	}
}

// globalLevel is shared by every logger built with New so the level can be
// changed at runtime.
var globalLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// New creates a new logger with the given configuration.
func New(cfg Config) (Logger, error) {
	globalLevel.SetLevel(parseLevel(cfg.Level))

	core, err := newCore(cfg, globalLevel)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.AddCaller {
		opts = append(opts, zap.AddCaller())
	}
	return &zapLogger{z: zap.New(core, opts...)}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// SetLevel dynamically sets the global log level.
func SetLevel(level string) {
	globalLevel.SetLevel(parseLevel(level))
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	return globalLevel.Level().String()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type holder struct{ l Logger }

var defaultLogger atomic.Pointer[holder]

func init() {
	l, err := New(DefaultConfig())
	if err != nil {
		l = Nop()
	}
	defaultLogger.Store(&holder{l: l})
}

// SetDefault replaces the global logger. A nil logger is ignored.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger.Store(&holder{l: l})
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load().l
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }

// Sync flushes the default logger.
func Sync() error {
	return Default().Sync()
}
