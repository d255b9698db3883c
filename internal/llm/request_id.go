package llm

import "context"

type requestIDContextKey struct{}

// WithRequestID stores a correlation id for an outbound completion request.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext retrieves the correlation id if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
