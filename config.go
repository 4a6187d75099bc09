package passwordless

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// DefaultRetryBudget is the number of failed rounds tolerated before the
	// exchange fails permanently.
	DefaultRetryBudget = 3

	// DefaultCodeDigits is the width of generated login codes.
	DefaultCodeDigits = 6

	// DefaultAnonymousDomain is the domain of synthetic account handles.
	DefaultAnonymousDomain = "feide.anonymous"

	// DefaultExternalProvider is the federated provider whose users are anonymized.
	DefaultExternalProvider = "Feide"

	// DefaultPrivilegedGroup is the group granted to allow-listed accounts.
	DefaultPrivilegedGroup = "admin"

	// DefaultSenderAddress is the From address on challenge emails.
	DefaultSenderAddress = "noreply@fagfilm.no"

	// DefaultSiteName shows up in the challenge email templates.
	DefaultSiteName = "Fagfilm"
)

// Config holds the resolved settings for the challenge protocol and the
// anonymization pipeline. Resolve it once at process start and pass it
// explicitly into the components that need it; nothing reads ambient state.
type Config struct {
	// PseudonymSalt is mixed into the provider subject before hashing.
	// Required: without it pseudonyms would be dictionary-attackable.
	PseudonymSalt string

	// AnonymousDomain is the domain part of synthetic email handles.
	AnonymousDomain string

	// ExternalProvider is the federated provider name to match inside
	// sign-up identity payloads.
	ExternalProvider string

	// PrivilegedEmails lists account emails that receive PrivilegedGroup
	// membership after confirmation. Compared case-insensitively.
	PrivilegedEmails []string

	// PrivilegedGroup is granted to allow-listed accounts.
	PrivilegedGroup string

	// RetryBudget caps cumulative failed rounds per session.
	RetryBudget int

	// CodeDigits is the width of generated codes.
	CodeDigits int

	// SenderAddress is the From address on challenge emails.
	SenderAddress string

	// SiteName is used in email templates.
	SiteName string
}

// WithDefaults fills zero-valued fields with package defaults.
func (c Config) WithDefaults() Config {
	if c.AnonymousDomain == "" {
		c.AnonymousDomain = DefaultAnonymousDomain
	}
	if c.ExternalProvider == "" {
		c.ExternalProvider = DefaultExternalProvider
	}
	if c.PrivilegedGroup == "" {
		c.PrivilegedGroup = DefaultPrivilegedGroup
	}
	if c.RetryBudget == 0 {
		c.RetryBudget = DefaultRetryBudget
	}
	if c.CodeDigits == 0 {
		c.CodeDigits = DefaultCodeDigits
	}
	if c.SenderAddress == "" {
		c.SenderAddress = DefaultSenderAddress
	}
	if c.SiteName == "" {
		c.SiteName = DefaultSiteName
	}
	return c
}

// Validate checks the configuration after defaults were applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PseudonymSalt, validation.Required, validation.Length(8, 0)),
		validation.Field(&c.AnonymousDomain, validation.Required),
		validation.Field(&c.ExternalProvider, validation.Required),
		validation.Field(&c.PrivilegedGroup, validation.Required),
		validation.Field(&c.RetryBudget, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.CodeDigits, validation.Required, validation.Min(4), validation.Max(10)),
		validation.Field(&c.SenderAddress, validation.Required, is.Email),
		validation.Field(&c.PrivilegedEmails, validation.Each(is.Email)),
	)
}
