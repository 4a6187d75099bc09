package passwordless

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// suppressedClaims is the deny-list of personally identifying claim names
// stripped from every issued token, anonymized account or not.
var suppressedClaims = []string{
	"name",
	"family_name",
	"given_name",
	"preferred_username",
	"nickname",
	"profile",
	"picture",
	"website",
	"gender",
	"birthdate",
	"zoneinfo",
	"locale",
	"updated_at",
	"identities",
	"phone_number",
	"phone_number_verified",
	"address",
}

const sessionIDBytes = 16

// ClaimsRedactor reduces a candidate claim set to the anonymous minimum
// right before token issuance. Aside from session id generation the
// transform is pure: the input map is never mutated.
type ClaimsRedactor struct {
	logger Logger
}

// NewClaimsRedactor returns a redactor with the given logger, which may be nil.
func NewClaimsRedactor(logger Logger) *ClaimsRedactor {
	return &ClaimsRedactor{logger: normalizeLogger(logger)}
}

// Redact returns the reduced claim set: the account's (possibly synthetic)
// email, a fresh random session_id, and the anonymous marker. Every
// deny-listed claim and any claim not explicitly kept is dropped.
func (r *ClaimsRedactor) Redact(candidate map[string]any) (map[string]any, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	redacted := map[string]any{
		"session_id": sessionID,
		"anonymous":  "true",
	}
	if email, ok := candidate["email"]; ok {
		redacted["email"] = email
	}

	r.logger.Debug("claims redacted: %d candidate claims reduced to %d", len(candidate), len(redacted))
	return redacted, nil
}

// Suppresses reports whether the redactor drops the named claim. Useful for
// hosts that surface the deny-list in diagnostics.
func (r *ClaimsRedactor) Suppresses(claim string) bool {
	for _, name := range suppressedClaims {
		if name == claim {
			return true
		}
	}
	return false
}

// NewSessionID returns a random hex session-tracking identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate session id")
	}
	return hex.EncodeToString(buf), nil
}
