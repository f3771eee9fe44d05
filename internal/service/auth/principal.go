package auth

import "context"

// Principal is the authenticated admin behind a request.
type Principal struct {
	AdminID   string
	Email     string
	Role      string
	IPAddress string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
