package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

func TestPasswordHashing(t *testing.T) {
	a := NewAuthService(testSecret, time.Hour)

	hash, err := a.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, a.CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.Error(t, a.CompareHashAndPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthService(testSecret, time.Hour)

	token, err := a.GenerateToken("42")
	require.NoError(t, err)

	sub, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	a := NewAuthService(testSecret, time.Hour)
	other := NewAuthService("another-secret-key-also-32-bytes-xx", time.Hour)

	token, err := a.GenerateToken("42")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	a := NewAuthService(testSecret, -time.Minute)

	token, err := a.GenerateToken("42")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a := NewAuthService(testSecret, time.Hour)
	_, err := a.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshTokenUnique(t *testing.T) {
	a := NewAuthService(testSecret, time.Hour)

	first, err := a.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := a.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
