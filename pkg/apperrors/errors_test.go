package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Wrap(cause, CodeDatabaseError, "db", "Database unavailable", http.StatusInternalServerError)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
	assert.Contains(t, appErr.Error(), "Database unavailable")
}

// The wrapped cause and HTTP status must never leak into the JSON body.
func TestMarshalHidesInternals(t *testing.T) {
	cause := errors.New("secret internal detail")
	appErr := Wrap(cause, CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)

	data, err := json.Marshal(appErr)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret internal detail")
	assert.NotContains(t, string(data), "500")
	assert.Contains(t, string(data), string(CodeInternalError))
}

func TestValidationErrorCarriesDetails(t *testing.T) {
	details := map[string]string{"email": "Must be a valid email address"}
	appErr := ValidationError(details)

	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	data, err := json.Marshal(appErr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Must be a valid email address")
}

func TestErrUpstreamIsBadGateway(t *testing.T) {
	cause := errors.New("dial timeout")
	appErr := ErrUpstream(cause)

	assert.Equal(t, http.StatusBadGateway, appErr.HTTPCode)
	assert.ErrorIs(t, appErr, cause)
}

func TestDomainErrorStatuses(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials.HTTPCode)
	assert.Equal(t, http.StatusConflict, ErrEmailAlreadyExists.HTTPCode)
	assert.Equal(t, http.StatusConflict, ErrAlreadyApplied.HTTPCode)
	assert.Equal(t, http.StatusNotFound, ErrJobNotFound.HTTPCode)
	assert.Equal(t, http.StatusNotFound, ErrNotJobOwner.HTTPCode)
	assert.Equal(t, http.StatusUnauthorized, ErrTokenExpired.HTTPCode)
}

func TestAsAppError(t *testing.T) {
	appErr := NewBadRequestError("nope")
	wrapped := Wrap(appErr, CodeInternalError, "system", "outer", http.StatusInternalServerError)

	var target *AppError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "outer", target.Message)

	assert.False(t, As(errors.New("plain"), &target))
}
