package logger

import "context"

type contextKey string

const (
	loggerKey      contextKey = "pwdless.logger"
	operationIDKey contextKey = "pwdless.operation_id"

	operationIDField = "operation_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithOperationID tags the context with the ID of the running operation.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

func OperationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context logger enriched with the operation ID.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
