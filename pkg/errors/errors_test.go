package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound(t *testing.T) {
	err := NotFound("listing", "lst-123")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "lst-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("radius_km must be positive")

	assert.Equal(t, "INVALID_ARGUMENT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestInvalidArgumentf(t *testing.T) {
	err := InvalidArgumentf("radius_km must not exceed %g", 50.0)

	assert.Equal(t, "INVALID_ARGUMENT", err.Code)
	assert.Equal(t, "radius_km must not exceed 50", err.Message)
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("index rebuilding")

	assert.Equal(t, "UNAVAILABLE", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestAppError_Error(t *testing.T) {
	err := &AppError{Code: "X", Message: "boom"}
	assert.Equal(t, "X: boom", err.Error())

	wrapped := &AppError{Code: "X", Message: "boom", Err: errors.New("cause")}
	assert.Equal(t, "X: boom: cause", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &AppError{Code: "X", Message: "boom", Err: cause}

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	cause := ErrNotFound
	err := Wrap(cause, "fetch listing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch listing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("bad")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("listing", "x")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Unavailable("rebuilding")))
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(fmt.Errorf("ctx: %w", tt.err)))
	}
}
