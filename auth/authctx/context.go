// Package authctx carries authentication claims through a context.Context.
// The claims type is chosen by the caller:
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get[*auth.Claims](ctx)
package authctx

import (
	"context"
	"errors"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when claims are missing or of another type.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores claims in ctx.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get returns the claims stored in ctx if they have type T.
func Get[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsKey).(T)
	return claims, ok
}

// MustGet is Get for handlers behind auth middleware. It panics when the
// claims are missing.
func MustGet[T any](ctx context.Context) T {
	claims, ok := Get[T](ctx)
	if !ok {
		panic(ErrNoClaims)
	}
	return claims
}

// GetOrError is Get returning ErrNoClaims instead of false.
func GetOrError[T any](ctx context.Context) (T, error) {
	claims, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoClaims
	}
	return claims, nil
}
