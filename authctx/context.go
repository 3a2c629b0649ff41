// Package authctx carries the authenticated principal through a request
// context.
//
// Usage:
//
//	// Store the principal (typically in middleware)
//	ctx = authctx.WithPrincipal(ctx, p)
//
//	// Retrieve it in handlers
//	p, ok := authctx.Principal(ctx)
//	p := authctx.MustPrincipal(ctx) // panics if missing
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/authkit/user"
)

type contextKey struct{}

var principalKey = contextKey{}

// ErrNoPrincipal is returned when no principal is stored in the context.
var ErrNoPrincipal = errors.New("authctx: no principal in context")

// Set stores an arbitrary value under the principal key. WithPrincipal is the
// typed form and should be preferred.
func Set(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, principalKey, v)
}

// Get retrieves the stored value as T.
func Get[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(principalKey).(T)
	return v, ok
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *user.Principal) context.Context {
	return Set(ctx, p)
}

// Principal returns the principal stored in ctx.
func Principal(ctx context.Context) (*user.Principal, bool) {
	p, ok := Get[*user.Principal](ctx)
	return p, ok && p != nil
}

// MustPrincipal returns the stored principal or panics. Use it only behind
// middleware that guarantees authentication.
func MustPrincipal(ctx context.Context) *user.Principal {
	p, ok := Principal(ctx)
	if !ok {
		panic("authctx: principal not found in context")
	}
	return p
}

// PrincipalOrError returns ErrNoPrincipal when ctx carries no principal.
func PrincipalOrError(ctx context.Context) (*user.Principal, error) {
	p, ok := Principal(ctx)
	if !ok {
		return nil, ErrNoPrincipal
	}
	return p, nil
}
