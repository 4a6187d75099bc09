package passwordless

// SignUpOrigin tags where a sign-up came from.
type SignUpOrigin string

const (
	// OriginExternalProvider marks federated sign-ups (anonymization path).
	OriginExternalProvider SignUpOrigin = "EXTERNAL_PROVIDER"
	// OriginDirect marks ordinary email sign-ups.
	OriginDirect SignUpOrigin = "DIRECT"
)

// PreSignUpEvent carries the raw attributes of a sign-up request.
type PreSignUpEvent struct {
	Origin SignUpOrigin `json:"origin"`
	// Email is the claimed address. For external-provider sign-ups the
	// platform maps the provider subject into this field.
	Email string `json:"email"`
	// Attributes holds the remaining raw user attributes.
	Attributes map[string]string `json:"attributes,omitempty"`
	// RawIdentities is the JSON-encoded federated-identity list, present
	// only on external-provider sign-ups.
	RawIdentities string `json:"identities,omitempty"`
}

// PreSignUpResponse tells the platform how to treat the new account.
type PreSignUpResponse struct {
	AutoConfirmUser bool `json:"autoConfirm"`
	AutoVerifyEmail bool `json:"autoVerifyEmail"`
	AutoVerifyPhone bool `json:"autoVerifyPhone"`
}

// DefineChallengeEvent is one decider invocation's input.
type DefineChallengeEvent struct {
	UserExists bool             `json:"userExists"`
	Rounds     ChallengeHistory `json:"rounds"`
}

// CreateChallengeEvent asks for a new round to be opened.
type CreateChallengeEvent struct {
	Kind        ChallengeKind `json:"kind"`
	Destination string        `json:"destination"`
}

// VerifyChallengeEvent carries the private round parameters and the answer
// the user submitted.
type VerifyChallengeEvent struct {
	Private map[string]string `json:"privateChallengeParameters"`
	Answer  string            `json:"answer"`
}

// VerifyChallengeResponse is the verifier's verdict.
type VerifyChallengeResponse struct {
	AnswerCorrect bool `json:"answerCorrect"`
}

// PreTokenEvent carries the candidate claim set before issuance.
type PreTokenEvent struct {
	Claims map[string]any `json:"claims"`
}

// PostConfirmationEvent announces a freshly confirmed account.
type PostConfirmationEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
