package passwordless

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Logger is the minimal logging surface the package depends on.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// IdentityStore is the narrow identity-platform capability the hooks consume:
// create/read/update user records and grant group membership. The surrounding
// platform owns the persisted records; this package only signals changes.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	Confirm(ctx context.Context, id uuid.UUID, verifyEmail bool) error
	AddToGroup(ctx context.Context, id uuid.UUID, group string) error
}

// AnonymousRegistrar creates (or finds) the account backing a synthetic
// identity. Registration failures never abort a sign-up.
type AnonymousRegistrar interface {
	RegisterAnonymous(ctx context.Context, identity AnonymizedIdentity) error
}

// TokenService mints and validates the anonymous session tokens issued after
// a successful challenge exchange.
type TokenService interface {
	Generate(identity Identity, claims map[string]any) (string, error)
	SignClaims(claims *TokenClaims) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] PASSWORDLESS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] PASSWORDLESS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] PASSWORDLESS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] PASSWORDLESS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
