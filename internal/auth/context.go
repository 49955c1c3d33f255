// Package auth issues and verifies bearer tokens and carries the
// authenticated identity through request contexts. It imports only domain
// so middleware and handlers can both depend on it.
package auth

import (
	"context"

	"github.com/DukeRupert/sdview/internal/domain"
)

type identityKey struct{}

// identity is the authenticated caller of a request.
type identity struct {
	user   *domain.User
	claims *Claims
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

// WithIdentity returns ctx carrying the authenticated user and the
// verified claims of the token they presented.
func WithIdentity(ctx context.Context, user *domain.User, claims *Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{user: user, claims: claims})
}

// SetUser replaces the user in ctx, keeping any claims.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return WithIdentity(ctx, user, identityFrom(ctx).claims)
}

// SetClaims replaces the claims in ctx, keeping any user.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return WithIdentity(ctx, identityFrom(ctx).user, claims)
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(ctx context.Context) *domain.User {
	return identityFrom(ctx).user
}

// GetClaims returns the verified token claims, or nil.
func GetClaims(ctx context.Context) *Claims {
	return identityFrom(ctx).claims
}
