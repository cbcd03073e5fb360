package logging

import "context"

// contextKey is the type of the context keys set by this package.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ModeKey is the context key for the request mode (coach, madlibs).
	ModeKey contextKey = "mode"

	// ThreadIDKey is the context key for the mail thread being answered.
	ThreadIDKey contextKey = "thread_id"
)

// contextKeys lists the keys copied into every record, in output order.
var contextKeys = []contextKey{RequestIDKey, ModeKey, ThreadIDKey}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithMode adds the request mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, ModeKey, mode)
}

// GetMode retrieves the request mode from the context.
func GetMode(ctx context.Context) string {
	return stringValue(ctx, ModeKey)
}

// WithThreadID adds a thread ID to the context.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, ThreadIDKey, threadID)
}

// GetThreadID retrieves the thread ID from the context.
func GetThreadID(ctx context.Context) string {
	return stringValue(ctx, ThreadIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextFields returns the non-empty context values keyed by field name.
func contextFields(ctx context.Context) map[string]string {
	fields := make(map[string]string, len(contextKeys))
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			fields[string(key)] = v
		}
	}
	return fields
}
