// Package authctx carries verified access-token claims through a request
// context.
//
//	ctx = authctx.WithClaims(ctx, claims)   // auth middleware
//	claims, ok := authctx.ClaimsFrom(ctx)   // handlers
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/logger"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when the context carries no claims.
var ErrNoClaims = errors.New("authctx: no claims in context")

// WithClaims stores claims in ctx. The subject is also exposed to
// logger.WithContext as the user id.
func WithClaims(ctx context.Context, claims jwt.Claims) context.Context {
	ctx = logger.ContextWithUserID(ctx, claims.Subject)
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the claims stored in ctx.
func ClaimsFrom(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(jwt.Claims)
	return claims, ok
}

// Require returns the stored claims or ErrNoClaims.
func Require(ctx context.Context) (jwt.Claims, error) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return jwt.Claims{}, ErrNoClaims
	}
	return claims, nil
}

// UserID returns the subject of the stored claims.
func UserID(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}
