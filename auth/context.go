package auth

import "context"

type ctxKey int

const (
	adminCtxKey ctxKey = iota
	clientCtxKey
)

func WithAdmin(ctx context.Context, c *AdminClaims) context.Context {
	return context.WithValue(ctx, adminCtxKey, c)
}

func AdminFromContext(ctx context.Context) (*AdminClaims, bool) {
	c, ok := ctx.Value(adminCtxKey).(*AdminClaims)
	return c, ok && c != nil
}

func WithClient(ctx context.Context, c *ClientClaims) context.Context {
	return context.WithValue(ctx, clientCtxKey, c)
}

func ClientFromContext(ctx context.Context) (*ClientClaims, bool) {
	c, ok := ctx.Value(clientCtxKey).(*ClientClaims)
	return c, ok && c != nil
}

// ClientID returns the authenticated client id or 0.
func ClientID(ctx context.Context) uint {
	if c, ok := ClientFromContext(ctx); ok {
		return c.ID
	}
	return 0
}

// AdminID returns the authenticated admin id or 0.
func AdminID(ctx context.Context) uint {
	if c, ok := AdminFromContext(ctx); ok {
		return c.ID
	}
	return 0
}
