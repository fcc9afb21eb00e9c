package toast

import (
	"context"
	"errors"
)

// ErrNoProvider is the panic value when FromContext finds no Notifier.
var ErrNoProvider = errors.New("toast: FromContext called outside a toast provider")

type contextKey struct{}

// NewContext returns a copy of ctx that carries n.
func NewContext(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, contextKey{}, n)
}

// FromContext returns the Notifier installed by NewContext. It panics
// with ErrNoProvider when there is none.
func FromContext(ctx context.Context) Notifier {
	n, ok := ctx.Value(contextKey{}).(Notifier)
	if !ok || n == nil {
		panic(ErrNoProvider)
	}
	return n
}
