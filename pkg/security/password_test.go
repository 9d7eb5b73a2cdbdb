package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
	assert.Error(t, hasher.Compare(hash, "wrong-pass"))
}

func TestBcryptHasherRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(4)
	_, err := hasher.Hash("short")
	assert.Error(t, err)
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.Len(t, pw, 16)

	for _, c := range pw {
		assert.True(t, strings.ContainsRune(passwordAlphabet, c), "unexpected character %q", c)
	}

	other, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, pw, other)
}

func TestGeneratePasswordEnforcesMinLength(t *testing.T) {
	pw, err := GeneratePassword(3)
	require.NoError(t, err)
	assert.Len(t, pw, MinPasswordLen)
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 64, "hex encoding doubles the byte length")
}
