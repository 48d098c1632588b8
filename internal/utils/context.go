package utils

import (
	"context"
)

type contextKey string

const ContextPrincipalKey contextKey = "principal"

// Principal is the authenticated actor attached to the request context by the
// auth middleware. Handlers only ever need the id and role; anything else is
// fetched from the store by id.
type Principal struct {
	ID   uint
	Role string
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ContextPrincipalKey).(Principal)
	return p, ok
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}
