// Package feide validates Feide-issued OpenID Connect tokens using the
// tenant's published JWK Set, and extracts the stable subject used for
// pseudonymization. Only the subject and issuer are surfaced; personal
// profile claims never leave this package.
package feide
