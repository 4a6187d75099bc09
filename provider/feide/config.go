package feide

import (
	"fmt"
	"strings"
	"time"
)

// ProviderName is the identity-provider name as it appears in federated
// sign-up payloads.
const ProviderName = "Feide"

const defaultIssuer = "https://auth.dataporten.no"

// Config holds Feide configuration for token validation.
type Config struct {
	// Issuer is the OpenID Connect issuer URL.
	// Default: "https://auth.dataporten.no".
	Issuer string

	// Audience is the registered client ID(s) to validate against.
	Audience []string

	// JWKSetURL overrides the JWK Set endpoint (optional).
	// Default: "{Issuer}/openid/jwks".
	JWKSetURL string

	// RefreshInterval is how often to refresh the JWK Set in the background.
	// Default: 1 hour.
	RefreshInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(audience []string) Config {
	return Config{
		Issuer:          defaultIssuer,
		Audience:        audience,
		RefreshInterval: time.Hour,
	}
}

func (c Config) issuerURL() string {
	issuer := strings.TrimSpace(c.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	return strings.TrimSuffix(issuer, "/")
}

func (c Config) jwksURL() string {
	if c.JWKSetURL != "" {
		return c.JWKSetURL
	}
	return fmt.Sprintf("%s/openid/jwks", c.issuerURL())
}
