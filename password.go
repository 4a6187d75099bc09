package passwordless

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hardness against hook latency budgets. Accounts in
// this flow never authenticate with a password, the hash only satisfies the
// identity platform's storage contract.
const bcryptCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// ThrowawayPasswordHash generates the hash of a random password nobody ever
// learns. Passwordless accounts still need a stored credential because the
// identity platform requires one even for custom-factor-only sign-in.
func ThrowawayPasswordHash() string {
	h, err := HashPassword(uuid.NewString())
	if err != nil {
		return ThrowawayPasswordHash()
	}
	return h
}
