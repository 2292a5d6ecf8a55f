package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSealer(t *testing.T) {
	sealer, err := NewTokenSealer("secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("eyJhbGciOi")
	require.NoError(t, err)
	assert.NotEqual(t, "eyJhbGciOi", sealed)

	again, err := sealer.Seal("eyJhbGciOi")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi", plain)

	passthrough, err := sealer.Open("legacy-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", passthrough)

	empty, err := sealer.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTokenSealerRejectsForeignKey(t *testing.T) {
	a, err := NewTokenSealer("one")
	require.NoError(t, err)
	b, err := NewTokenSealer("two")
	require.NoError(t, err)

	sealed, err := a.Seal("token")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)

	_, err = NewTokenSealer("")
	assert.Error(t, err)
}
