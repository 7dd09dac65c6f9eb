package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorSentinelMatching(t *testing.T) {
	err := NotFound("user", "u1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Error(), "u1")
}

func TestConflictIs400(t *testing.T) {
	err := Conflict("ALREADY_PURCHASED", "Grid already purchased")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "ALREADY_PURCHASED", err.Code)
}

func TestInvalidCredentialsHidesWhichFieldFailed(t *testing.T) {
	err := InvalidCredentials()
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.NotContains(t, err.Message, "password was wrong")
	assert.NotContains(t, err.Message, "email not found")
}

func TestHTTPStatusFromAppError(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(InvalidToken("TOKEN_EXPIRED", "expired")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("nope")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internal(errors.New("boom"))))
}

func TestHTTPStatusFromWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause)
	require.True(t, errors.Is(err, cause))
}
