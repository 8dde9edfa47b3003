package http

import (
	"context"

	"github.com/sagarc03/bluelist"
)

type backendKey struct{}

// WithBackend returns a copy of ctx carrying b.
func WithBackend(ctx context.Context, b bluelist.Backend) context.Context {
	return context.WithValue(ctx, backendKey{}, b)
}

// BackendFromContext returns the request's backend facade, if one was attached.
func BackendFromContext(ctx context.Context) (bluelist.Backend, bool) {
	b, ok := ctx.Value(backendKey{}).(bluelist.Backend)
	return b, ok && b != nil
}
