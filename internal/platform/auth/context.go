package auth

import (
	"context"
	"time"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the signed-in identity carried by a verified session.
type Principal struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
	SessionID   string
	ExpiresAt   time.Time
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the signed-in principal, or false for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func UIDFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UID
	}
	return ""
}
