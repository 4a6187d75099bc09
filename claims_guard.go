package passwordless

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// ErrImmutableClaimMutation is returned when a refresh alters a claim that
// identifies the session.
var ErrImmutableClaimMutation = goerrors.New("immutable claim mutated", goerrors.CategoryConflict).
	WithTextCode("IMMUTABLE_CLAIM_MUTATION").
	WithCode(goerrors.CodeConflict)

type immutableClaimsSnapshot struct {
	subject   string
	issuer    string
	audience  []string
	sessionID string
	anonymous string
	email     string
}

func captureImmutableClaims(claims *TokenClaims) immutableClaimsSnapshot {
	var audienceCopy []string
	if len(claims.RegisteredClaims.Audience) > 0 {
		audienceCopy = append(audienceCopy, claims.RegisteredClaims.Audience...)
	}

	return immutableClaimsSnapshot{
		subject:   claims.RegisteredClaims.Subject,
		issuer:    claims.RegisteredClaims.Issuer,
		audience:  audienceCopy,
		sessionID: claims.SessionID,
		anonymous: claims.Anonymous,
		email:     claims.Email,
	}
}

func (snap immutableClaimsSnapshot) validate(claims *TokenClaims) error {
	if claims.RegisteredClaims.Subject != snap.subject {
		return immutableClaimViolation("sub")
	}

	if claims.RegisteredClaims.Issuer != snap.issuer {
		return immutableClaimViolation("iss")
	}

	if !audienceEqual(claims.RegisteredClaims.Audience, snap.audience) {
		return immutableClaimViolation("aud")
	}

	if claims.SessionID != snap.sessionID {
		return immutableClaimViolation("session_id")
	}

	if claims.Anonymous != snap.anonymous {
		return immutableClaimViolation("anonymous")
	}

	if claims.Email != snap.email {
		return immutableClaimViolation("email")
	}

	return nil
}

// freshnessValid ensures the refreshed window moves forward, never backward.
func freshnessValid(claims *TokenClaims, notBefore time.Time) bool {
	if claims.RegisteredClaims.ExpiresAt == nil {
		return false
	}
	return !claims.RegisteredClaims.ExpiresAt.Time.Before(notBefore)
}

func audienceEqual(a jwt.ClaimStrings, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func immutableClaimViolation(field string) error {
	clone := ErrImmutableClaimMutation.Clone()
	if clone == nil {
		return ErrImmutableClaimMutation
	}
	clone.Message = fmt.Sprintf("immutable claim mutated: %s", field)
	clone.Source = ErrImmutableClaimMutation
	return clone.WithMetadata(map[string]any{"claim": field})
}
