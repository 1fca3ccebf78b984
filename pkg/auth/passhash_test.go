package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("hunter22", hash, salt))
	assert.False(t, VerifyPassword("hunter23", hash, salt))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	hash1, salt1, err := HashPassword("hunter22")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}
