// Package identity carries the authenticated principal through request
// context. It is display-only input; authorization lives in the store's
// policy layer.
package identity

import "context"

type Principal struct {
	UserID string
	Email  string
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
