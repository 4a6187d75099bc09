package passwordless_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	passwordless "github.com/fagfilm/passwordless"
)

func TestUserContext(t *testing.T) {
	user := &passwordless.User{Username: "anon-abc", Anonymous: true}

	ctx := passwordless.WithContext(context.Background(), user)

	got, ok := passwordless.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = passwordless.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	claims := &passwordless.TokenClaims{SessionID: "deadbeef", Anonymous: "true"}

	ctx := passwordless.WithClaimsContext(context.Background(), claims)

	got, ok := passwordless.GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", got.SessionID)

	_, ok = passwordless.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestIsAnonymousSession(t *testing.T) {
	t.Run("from claims", func(t *testing.T) {
		ctx := passwordless.WithClaimsContext(context.Background(), &passwordless.TokenClaims{Anonymous: "true"})
		assert.True(t, passwordless.IsAnonymousSession(ctx))
	})

	t.Run("from user record", func(t *testing.T) {
		ctx := passwordless.WithContext(context.Background(), &passwordless.User{Anonymous: true})
		assert.True(t, passwordless.IsAnonymousSession(ctx))
	})

	t.Run("empty context", func(t *testing.T) {
		assert.False(t, passwordless.IsAnonymousSession(context.Background()))
	})

	t.Run("non-anonymous claims", func(t *testing.T) {
		ctx := passwordless.WithClaimsContext(context.Background(), &passwordless.TokenClaims{})
		assert.False(t, passwordless.IsAnonymousSession(ctx))
	})
}
