package goGuard

import "context"

type clientIDContextKey struct{}

// WithClientID attaches the browser client identifier to ctx. It is copied
// into audit events and logs.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey{}, clientID)
}

// ClientIDFromContext returns the identifier set by WithClientID.
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(clientIDContextKey{}).(string)
	return id
}
