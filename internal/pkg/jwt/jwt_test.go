package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-secret", time.Hour)
	now := time.Now()

	token, expiresAt, err := svc.GenerateToken("u1", "ana@example.com", "s1", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "s1", claims.ID)
}

func TestValidateRejects(t *testing.T) {
	svc := New("test-secret", time.Hour)

	expired, _, err := svc.GenerateToken("u1", "ana@example.com", "s1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)

	foreign, _, err := New("other-secret", time.Hour).GenerateToken("u1", "ana@example.com", "s1", time.Now())
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExpiresAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token, expiresAt, err := New("test-secret", time.Hour).GenerateToken("u1", "ana@example.com", "s1", now)
	require.NoError(t, err)

	assert.True(t, expiresAt.Equal(ExpiresAt(token)))
	assert.True(t, ExpiresAt("opaque-token").IsZero())
}
