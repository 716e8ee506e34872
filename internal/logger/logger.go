package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the process-wide logger.
	Log *zap.Logger
	// Sugar wraps Log with printf-style helpers.
	Sugar *zap.SugaredLogger

	initOnce sync.Once
)

// Init builds the console logger at the given level ("debug", "info", "warn", "error").
func Init(level string) error {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Sugar = Log.Sugar()
	return nil
}

// GetLogger returns a named logger, initialising the default one if needed.
func GetLogger(name string) *zap.SugaredLogger {
	initOnce.Do(func() {
		if Log == nil {
			_ = Init("info")
		}
	})
	return Log.Named(name).Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

type ctxKey string

const requestIDKey ctxKey = "requestID"

// WithRequestID stores the request id for loggers built from ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request id set by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// FromContext returns a named logger tagged with the request id, if any.
func FromContext(ctx context.Context, name string) *zap.SugaredLogger {
	log := GetLogger(name)
	if id, ok := RequestID(ctx); ok {
		return log.With("request_id", id)
	}
	return log
}
