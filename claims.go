package passwordless

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set of an issued anonymous session token. It is
// deliberately minimal: registered claims, the account email, the random
// session tracker, and the anonymous marker. Nothing else survives
// redaction.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Anonymous string `json:"anonymous,omitempty"`
}

// Subject returns the subject claim.
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// IsAnonymous reports whether the token carries the anonymous marker.
func (c *TokenClaims) IsAnonymous() bool {
	return c.Anonymous == "true"
}

// Expires returns the expiration time, zero when unset.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time, zero when unset.
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
