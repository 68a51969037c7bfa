package entity

import "context"

// Logger specifies a contextual, structured logger.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}

// NopLogger discards everything, for hosts that do not log.
type NopLogger struct{}

func (NopLogger) Info(ctx context.Context, msg string, kv ...any) {}

func (NopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}
