package feide

import (
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	passwordless "github.com/fagfilm/passwordless"
)

// Identity is the validated, minimized result of a Feide token check. The
// subject is the only stable per-user value; it feeds the pseudonym
// derivation downstream.
type Identity struct {
	Subject  string
	Issuer   string
	Audience []string
}

// Federated maps the identity into the shape federated sign-up payloads use.
func (i Identity) Federated() passwordless.FederatedIdentity {
	return passwordless.FederatedIdentity{
		ProviderName: ProviderName,
		ProviderType: "OIDC",
		UserID:       i.Subject,
	}
}

// TokenValidator validates Feide-issued JWTs against the tenant's JWK Set.
type TokenValidator struct {
	config Config
	jwks   *keyfunc.JWKS
}

// NewTokenValidator fetches the JWK Set and starts its background refresh.
// Call Close when the validator is no longer needed.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK Set: %s", err)
		},
		RefreshInterval:   refresh,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("feide: failed to get JWK Set from %s: %w", cfg.jwksURL(), err)
	}

	return &TokenValidator{config: cfg, jwks: jwks}, nil
}

// Validate parses and verifies the token, returning the minimized identity.
func (v *TokenValidator) Validate(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(v.config.issuerURL()),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	for _, aud := range v.config.Audience {
		opts = append(opts, jwt.WithAudience(aud))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("feide: token validation failed: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("feide: token is not valid")
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("feide: token has no subject")
	}

	return Identity{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}, nil
}

// Close stops the background JWK Set refresh.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
