package passwordless

// ChallengeKind tags the factor a round asked for.
type ChallengeKind string

const (
	// ChallengeCustom is the email one-time-code factor.
	ChallengeCustom ChallengeKind = "CUSTOM_CHALLENGE"
	// ChallengeSRP is a legacy initial factor some clients still open with.
	ChallengeSRP ChallengeKind = "SRP_A"
	// ChallengePasswordVerifier is a legacy initial factor.
	ChallengePasswordVerifier ChallengeKind = "PASSWORD_VERIFIER"
)

// RoundResult is the tri-state outcome of a round. Once a round resolves to
// succeeded or failed it never changes; the history only grows.
type RoundResult string

const (
	RoundPending   RoundResult = "PENDING"
	RoundSucceeded RoundResult = "SUCCEEDED"
	RoundFailed    RoundResult = "FAILED"
)

// ChallengeRound is one challenge-and-response exchange within a session.
type ChallengeRound struct {
	Kind   ChallengeKind `json:"kind"`
	Result RoundResult   `json:"result"`
}

// IsCustom reports whether the round asked for the email code factor.
func (r ChallengeRound) IsCustom() bool {
	return r.Kind == ChallengeCustom
}

// Resolved reports whether the round's result is final.
func (r ChallengeRound) Resolved() bool {
	return r.Result == RoundSucceeded || r.Result == RoundFailed
}

// ChallengeHistory is the ordered, append-only round sequence for one
// authentication attempt. Insertion order is temporal order.
type ChallengeHistory []ChallengeRound

// Last returns the most recent round, if any.
func (h ChallengeHistory) Last() (ChallengeRound, bool) {
	if len(h) == 0 {
		return ChallengeRound{}, false
	}
	return h[len(h)-1], true
}

// FailedCustomRounds counts resolved custom rounds that failed. The retry
// budget is enforced against this count, not against consecutive failures.
func (h ChallengeHistory) FailedCustomRounds() int {
	failures := 0
	for _, round := range h {
		if round.IsCustom() && round.Result == RoundFailed {
			failures++
		}
	}
	return failures
}

// Append returns a new history with the round added, leaving h untouched.
func (h ChallengeHistory) Append(round ChallengeRound) ChallengeHistory {
	next := make(ChallengeHistory, 0, len(h)+1)
	next = append(next, h...)
	return append(next, round)
}
