// Package requestid propagates a per-request ID through context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header the ID is read from and echoed back on.
const Header = "X-Request-ID"

type ctxKey struct{}

// WithRequestID returns a context carrying the given ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID from context, or a fresh one when
// the context carries none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// Ensure adopts the caller-supplied ID when present, otherwise mints a
// new one. It returns the enriched context and the effective ID.
func Ensure(ctx context.Context, supplied string) (context.Context, string) {
	id := supplied
	if id == "" {
		id = uuid.New().String()
	}
	return WithRequestID(ctx, id), id
}
