package passwordless

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// RefreshOptions controls how RefreshToken extends a session.
type RefreshOptions struct {
	// TTL overrides the default token expiration. Zero uses TokenService defaults.
	TTL time.Duration
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
	// Customize lets callers annotate the refreshed claims before signing.
	// Identity claims (sub, iss, aud, session_id, anonymous, email) are
	// immutable; mutating them aborts the refresh.
	Customize func(*TokenClaims) error
}

type tokenDefaults struct {
	issuer   string
	audience jwt.ClaimStrings
	ttl      time.Duration
}

type tokenDefaultsProvider interface {
	tokenDefaults() tokenDefaults
}

// RefreshToken validates an existing session token and reissues it with a
// fresh expiry and token ID. Everything that identifies the session carries
// over unchanged; the anonymous claim shape survives every refresh.
func RefreshToken(tokenService TokenService, tokenString string, opts RefreshOptions) (string, time.Time, error) {
	if tokenService == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}

	claims, err := tokenService.Validate(tokenString)
	if err != nil {
		return "", time.Time{}, err
	}

	ttl := opts.TTL
	if defaultsProvider, ok := tokenService.(tokenDefaultsProvider); ok && ttl == 0 {
		ttl = defaultsProvider.tokenDefaults().ttl
	}
	if ttl <= 0 {
		return "", time.Time{}, goerrors.New("token TTL must be positive", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	expiresAt := issuedAt.Add(ttl)

	snap := captureImmutableClaims(claims)

	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	claims.RegisteredClaims.ID = ""
	ensureTokenID(&claims.RegisteredClaims)

	if opts.Customize != nil {
		if err := opts.Customize(claims); err != nil {
			return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "refresh customization failed")
		}
	}

	if err := snap.validate(claims); err != nil {
		return "", time.Time{}, err
	}

	if !freshnessValid(claims, issuedAt) {
		return "", time.Time{}, goerrors.New("refreshed token expires in the past", goerrors.CategoryBadInput)
	}

	token, err := tokenService.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
