package passwordless

// challengeMetadataPrefix tags round metadata with the bound code so host
// dashboards can correlate rounds. Private parameters remain the only place
// verification reads the code from.
const challengeMetadataPrefix = "CODE-"

// privateCodeKey is the private-parameter key the code is bound under.
const privateCodeKey = "code"

// ChallengeParameters is what a newly opened round hands back to the host
// dispatcher. Private parameters never reach the client; public parameters
// are empty for the email code factor.
type ChallengeParameters struct {
	Private  map[string]string `json:"privateChallengeParameters"`
	Public   map[string]string `json:"publicChallengeParameters"`
	Metadata string            `json:"challengeMetadata,omitempty"`
}

// BoundCode returns the code bound to the round, empty when absent.
func (p ChallengeParameters) BoundCode() string {
	return p.Private[privateCodeKey]
}

func newChallengeParameters(code string) ChallengeParameters {
	return ChallengeParameters{
		Private:  map[string]string{privateCodeKey: code},
		Public:   map[string]string{},
		Metadata: challengeMetadataPrefix + code,
	}
}
