package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	z *zap.Logger
}

func newCore(cfg Config, level zap.AtomicLevel) (zapcore.Core, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	var w io.Writer
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log dir: %w", err)
		}
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	case cfg.Output != nil:
		w = cfg.Output
	default:
		w = os.Stderr
	}

	return zapcore.NewCore(enc, zapcore.AddSync(w), level), nil
}

func (l *zapLogger) Debug(msg string, args ...any) { l.z.Debug(msg, fields(args)...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.z.Info(msg, fields(args)...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.z.Warn(msg, fields(args)...) }
func (l *zapLogger) Error(msg string, args ...any) { l.z.Error(msg, fields(args)...) }

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{z: l.z.With(fields(args)...)}
}

// WithContext attaches the operation ID carried by ctx, if any.
func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if id := OperationIDFromContext(ctx); id != "" {
		return &zapLogger{z: l.z.With(zap.String(operationIDField, id))}
	}
	return l
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

// fields converts alternating key/value arguments to zap fields, running
// each pair through the redaction filter. A zap.Field argument is accepted
// as is; a dangling value is logged under "!BADKEY".
func fields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); {
		switch v := args[i].(type) {
		case zap.Field:
			out = append(out, redactField(v))
			i++
			continue
		case string:
			if i+1 < len(args) {
				out = append(out, zap.Any(v, redactValue(v, args[i+1])))
				i += 2
				continue
			}
		}
		out = append(out, zap.Any("!BADKEY", args[i]))
		i++
	}
	return out
}
