package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUser(ctx))
	assert.Nil(t, GetClaims(ctx))

	user := testUser()
	claims := &Claims{UserID: user.ID, Email: user.Email}

	ctx = WithIdentity(ctx, user, claims)
	assert.Same(t, user, GetUser(ctx))
	assert.Same(t, claims, GetClaims(ctx))

	other := testUser()
	other.Email = "other@example.com"
	replaced := SetUser(ctx, other)
	assert.Same(t, other, GetUser(replaced))
	assert.Same(t, claims, GetClaims(replaced), "claims survive SetUser")
	assert.Same(t, user, GetUser(ctx), "parent context is unchanged")

	onlyClaims := SetClaims(context.Background(), claims)
	assert.Nil(t, GetUser(onlyClaims))
	assert.Same(t, claims, GetClaims(onlyClaims))
}
