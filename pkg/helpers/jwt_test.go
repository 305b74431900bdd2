package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)

	access, exp, err := m.GenerateAccessToken("u1", "sid-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)

	t.Run("access token does not parse as refresh", func(t *testing.T) {
		_, err := m.ParseRefreshToken(access)
		assert.Error(t, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := NewJWTManager("different", "refresh", time.Hour, 24*time.Hour)
		_, err := other.ParseAccessToken(access)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		short := NewJWTManager("access", "refresh", -time.Minute, 24*time.Hour)
		tok, _, err := short.GenerateAccessToken("u1", "sid-1")
		require.NoError(t, err)
		_, err = m.ParseAccessToken(tok)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CompareHashAndPassword(hash, "hunter22"))
	assert.False(t, CompareHashAndPassword(hash, "hunter23"))
}
