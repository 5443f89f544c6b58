package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

type contextKey struct{}

// Init initializes the global logger.
// For "development" env, it produces pretty console logs.
// For "production" env, it produces JSON logs.
func Init(environment string, level string) error {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := zapcore.ParseLevel(level)
	if err == nil {
		config.Level = zap.NewAtomicLevelAt(l)
	}

	logger, err := config.Build(zap.Fields(zap.String("service", "merchant-orders")))
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

// Set replaces the global logger. Tests use it to capture output with zaptest/observer.
func Set(l *zap.Logger) {
	globalLogger = l
}

// Get returns the global logger instance.
// If not initialized, it returns a no-op logger to prevent panics.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// ForProvider returns the context's logger tagged with the external provider name.
func ForProvider(ctx context.Context, provider string) *zap.Logger {
	return FromContext(ctx).With(zap.String("provider", provider))
}

// WithRayID returns a copy of ctx carrying a logger tagged with the request's ray id.
func WithRayID(ctx context.Context, rayID string) context.Context {
	return context.WithValue(ctx, contextKey{}, Get().With(zap.String("ray_id", rayID)))
}

// FromContext returns the request-scoped logger stored by WithRayID, or the global logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return Get()
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
