package relay

import "context"

type requestIDKey struct{}

// WithRequestID returns a context whose requests are sent with the given
// X-Request-ID instead of a generated one. Callers use it to correlate a
// request with their own records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored by WithRequestID, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
