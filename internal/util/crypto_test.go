package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64-character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)

		pattern := regexp.MustCompile(`^[0-9a-f]{64}$`)
		assert.True(t, pattern.MatchString(token), "token should be 64 hex chars, got: %s", token)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, err := GenerateToken()
			require.NoError(t, err)
			assert.False(t, seen[token], "duplicate token generated: %s", token)
			seen[token] = true
		}
	})
}

func TestHashToken(t *testing.T) {
	t.Run("produces stable sha256 hex", func(t *testing.T) {
		hash := HashToken("test-token")
		assert.Len(t, hash, 64)
		assert.Equal(t, hash, HashToken("test-token"))
	})

	t.Run("different tokens produce different hashes", func(t *testing.T) {
		assert.NotEqual(t, HashToken("a"), HashToken("b"))
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("secret", "secret"))
	assert.False(t, ConstantTimeEqual("secret", "Secret"))
	assert.False(t, ConstantTimeEqual("secret", "secret2"))
}

func TestMaskToken(t *testing.T) {
	t.Run("truncates long tokens", func(t *testing.T) {
		assert.Equal(t, "abcdef12...", MaskToken("abcdef1234567890"))
	})

	t.Run("hides short tokens entirely", func(t *testing.T) {
		assert.Equal(t, "********", MaskToken("short"))
	})
}
