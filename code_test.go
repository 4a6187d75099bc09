package passwordless_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	passwordless "github.com/fagfilm/passwordless"
)

func TestGenerateCode_WidthAndRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := passwordless.GenerateCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateCode_OtherWidths(t *testing.T) {
	for _, digits := range []int{4, 8, 10} {
		code, err := passwordless.GenerateCode(digits)
		require.NoError(t, err)
		assert.Len(t, code, digits)
		assert.NotEqual(t, byte('0'), code[0])
	}
}

func TestGenerateCode_RejectsBadWidth(t *testing.T) {
	for _, digits := range []int{0, 3, 11, -1} {
		_, err := passwordless.GenerateCode(digits)
		assert.Error(t, err, "width %d", digits)
	}
}

func TestGenerateCode_NotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := passwordless.GenerateCode(6)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
