package requestctx

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// LogAttrs returns slog key/value pairs identifying the request, or nil.
func LogAttrs(ctx context.Context) []any {
	if id := GetRequestID(ctx); id != "" {
		return []any{"requestId", id}
	}
	return nil
}
