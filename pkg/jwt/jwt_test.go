package jwt

import (
	"testing"
	"time"

	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewManager("test-secret", 48*time.Hour)
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateTokenExpired(t *testing.T) {
	issued := time.Now().Add(-49 * time.Hour)
	old, err := NewManager("test-secret", 48*time.Hour, WithClock(func() time.Time { return issued }))
	require.NoError(t, err)
	token, err := old.GenerateToken("user-1")
	require.NoError(t, err)

	m, err := NewManager("test-secret", 48*time.Hour)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, customErrors.ExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	a, _ := NewManager("secret-a", time.Hour)
	b, _ := NewManager("secret-b", time.Hour)

	token, err := a.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, customErrors.InvalidToken)

	_, err = b.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, customErrors.InvalidToken)
}

func TestRemainingTTL(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	ttl := m.RemainingTTL(token)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	assert.Zero(t, m.RemainingTTL("garbage"))
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}
