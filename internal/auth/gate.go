package auth

import (
	"context"

	"github.com/SkWeli/step-tracker/internal/session"
)

type claimsKey struct{}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims attached by WithClaims.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// ClaimsGate grants a capability when the request context carries claims
// that list it. A context without claims is granted nothing.
type ClaimsGate struct{}

func (ClaimsGate) Check(ctx context.Context, c session.Capability) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return false, nil
	}
	return claims.Has(string(c)), nil
}
