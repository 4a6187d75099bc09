package passwordless

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(r context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the TokenClaims from the standard context
func GetClaims(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}

// GetRouterClaims extracts the TokenClaims from the router context. JWT
// middleware stores the parsed token in locals under the given key.
func GetRouterClaims(ctx router.Context, key string) (*TokenClaims, bool) {
	if key == "" {
		key = "user" // Default key used by JWT middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}

	switch v := raw.(type) {
	case *TokenClaims:
		return v, true
	case *jwt.Token:
		claims, ok := v.Claims.(*TokenClaims)
		return claims, ok
	default:
		return nil, false
	}
}

// IsAnonymousSession reports whether the context carries an anonymous
// session, either through claims or a resolved user record.
func IsAnonymousSession(ctx context.Context) bool {
	if claims, ok := GetClaims(ctx); ok {
		return claims.IsAnonymous()
	}
	if user, ok := FromContext(ctx); ok {
		return user.Anonymous
	}
	return false
}
