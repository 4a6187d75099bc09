package passwordless

import (
	"errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrNoEmptyString guards against hashing empty secrets
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrMismatchedHashAndPassword is returned when a secret does not match its hash
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrNoProviderIdentity is returned when a federated payload carries no
// identity for the configured external provider. Callers treat it as
// "proceed through the direct sign-up path", not as a failure.
var ErrNoProviderIdentity = errors.New("no matching provider identity")

// ErrUnableToParseIdentities is returned for malformed federated-identity payloads
var ErrUnableToParseIdentities = errors.New("unable to parse federated identities")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")
