package passwordless

import (
	"crypto/subtle"
)

// VerifyAnswer compares a submitted answer with the secret bound to the
// currently open round. Exact string equality, no trimming, no partial-match
// leniency. The comparison is constant-time so response timing leaks nothing
// about how many leading digits matched. An empty secret never verifies, even
// against an empty answer: a round with no bound code must not be passable.
func VerifyAnswer(expected, provided string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
