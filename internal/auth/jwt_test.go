package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/osdatum/backend/pkg/errors"
)

func TestNewTokenManagerRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenManager("", "osdatum")
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	m, err := NewTokenManager("test-secret", "osdatum")
	require.NoError(t, err)

	token, err := m.Issue("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "osdatum", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyExpiredToken(t *testing.T) {
	m, err := NewTokenManager("test-secret", "osdatum")
	require.NoError(t, err)

	token, err := m.Issue("user-123", "", -time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-a", "osdatum")
	require.NoError(t, err)
	verifier, err := NewTokenManager("secret-b", "osdatum")
	require.NoError(t, err)

	token, err := issuer.Issue("user-123", "", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestVerifyGarbageToken(t *testing.T) {
	m, err := NewTokenManager("test-secret", "osdatum")
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.Error(t, err, "token %q", tok)
	}
}
