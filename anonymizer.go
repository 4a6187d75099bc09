package passwordless

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-errors"
)

// pseudonymHexChars is how much of the subject digest survives into the
// account handle. 64 bits of hash is plenty for uniqueness at this scale
// and keeps the synthetic email short.
const pseudonymHexChars = 16

// AnonymizedIdentity is the stable pseudonymous handle derived from an
// external provider subject. It carries no reversible personal data; the
// source subject is hashed away and never stored on the struct.
type AnonymizedIdentity struct {
	PseudonymHash  string
	SyntheticEmail string
}

// FederatedIdentity is one entry of the federated-identity payload attached
// to external-provider sign-ups.
type FederatedIdentity struct {
	ProviderName string `json:"providerName"`
	ProviderType string `json:"providerType,omitempty"`
	UserID       string `json:"userId"`
}

// Anonymizer maps external-provider subjects to synthetic account handles.
// The mapping is deterministic: the same subject always yields the same
// synthetic email, so returning users land on their existing account.
type Anonymizer struct {
	salt     string
	domain   string
	provider string
	logger   Logger
}

// AnonymizerOption customizes anonymizer construction.
type AnonymizerOption func(*Anonymizer)

// WithAnonymizerLogger overrides the default logger.
func WithAnonymizerLogger(logger Logger) AnonymizerOption {
	return func(a *Anonymizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnonymizer builds an anonymizer from the resolved configuration.
func NewAnonymizer(cfg Config, opts ...AnonymizerOption) *Anonymizer {
	cfg = cfg.WithDefaults()
	a := &Anonymizer{
		salt:     cfg.PseudonymSalt,
		domain:   cfg.AnonymousDomain,
		provider: cfg.ExternalProvider,
		logger:   defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Anonymize derives the pseudonymous identity for a provider subject.
func (a *Anonymizer) Anonymize(subject string) AnonymizedIdentity {
	sum := sha256.Sum256([]byte(subject + a.salt))
	hash := hex.EncodeToString(sum[:])[:pseudonymHexChars]

	return AnonymizedIdentity{
		PseudonymHash:  hash,
		SyntheticEmail: "anon-" + hash + "@" + a.domain,
	}
}

// SubjectFromPayload extracts the configured provider's subject identifier
// from a raw federated-identity payload (a JSON list). It returns
// ErrNoProviderIdentity when the list has no matching entry and
// ErrUnableToParseIdentities when the payload does not decode; both are
// expected conditions the sign-up flow degrades through, not failures.
func (a *Anonymizer) SubjectFromPayload(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrNoProviderIdentity
	}

	var identities []FederatedIdentity
	if err := json.Unmarshal([]byte(raw), &identities); err != nil {
		a.logger.Warn("anonymizer: malformed identities payload: %v", err)
		return "", errors.Wrap(err, errors.CategoryBadInput, ErrUnableToParseIdentities.Error())
	}

	for _, identity := range identities {
		if identity.ProviderName == a.provider {
			if identity.UserID == "" {
				return "", ErrNoProviderIdentity
			}
			return identity.UserID, nil
		}
	}

	return "", ErrNoProviderIdentity
}
