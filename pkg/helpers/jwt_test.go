package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	token, exp, err := m.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestJWTSecretsAreSeparate(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)

	// An access token must not parse as a refresh token.
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	a := NewJWTManager("secret-a", "secret-a", time.Minute, time.Hour)
	b := NewJWTManager("secret-b", "secret-b", time.Minute, time.Hour)

	token, _, err := a.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)

	_, err = b.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)

	token, _, err := m.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)
}
