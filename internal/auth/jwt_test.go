package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerifyRoundtrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestJWT_DefaultTTL(t *testing.T) {
	j := NewJWT("test-secret", 0)
	assert.Equal(t, defaultTokenTTL, j.ttl)
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	j := &JWT{secret: []byte("test-secret"), ttl: -time.Hour}

	token, err := j.Sign(42)
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	token, err := NewJWT("secret-a", time.Hour).Sign(42)
	require.NoError(t, err)

	_, err = NewJWT("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_GarbageRejected(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := j.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
