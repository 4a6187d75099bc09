package passwordless

import (
	"crypto/rand"
	"math/big"

	"github.com/goliatone/go-errors"
)

// GenerateCode produces a uniformly distributed decimal code of the given
// width from a cryptographically secure source. The first digit is never
// zero, so a 6-digit code always falls in [100000, 999999].
func GenerateCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("code width out of range", errors.CategoryBadInput)
	}

	low := pow10(digits - 1)
	span := low * 9

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read random source")
	}

	code := big.NewInt(low)
	code.Add(code, n)
	return code.String(), nil
}

func pow10(exp int) int64 {
	v := int64(1)
	for i := 0; i < exp; i++ {
		v *= 10
	}
	return v
}
