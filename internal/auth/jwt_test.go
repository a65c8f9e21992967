package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken("secret", "u1", "user", "a@x.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseValidate("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	token, err := CreateAccessToken("secret", "u1", "user", "a@x.com", -time.Minute)
	require.NoError(t, err)

	_, err = ParseValidate("secret", token)
	assert.Error(t, err)
}

func TestWrongSecretIsRejected(t *testing.T) {
	token, err := CreateAccessToken("secret", "u1", "user", "a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = ParseValidate("other", token)
	assert.Error(t, err)
}

func TestGarbageTokenIsRejected(t *testing.T) {
	_, err := ParseValidate("secret", "not.a.token")
	assert.Error(t, err)
}
