package session

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"monarchmcp/internal/monarch"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthError401(t *testing.T) {
	err := &monarch.TransportServerError{Code: http.StatusUnauthorized}
	assert.True(t, IsAuthError(err))
}

func TestIsAuthError403JSON(t *testing.T) {
	err := &monarch.TransportServerError{
		Code: http.StatusForbidden,
		Cause: &monarch.HTTPCause{
			StatusCode: http.StatusForbidden,
			Headers:    http.Header{"Content-Type": []string{"application/json"}},
		},
	}
	assert.True(t, IsAuthError(err))
}

func TestIsAuthError403HTMLIsWAFBlock(t *testing.T) {
	err := &monarch.TransportServerError{
		Code: http.StatusForbidden,
		Cause: &monarch.HTTPCause{
			StatusCode: http.StatusForbidden,
			Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		},
	}
	assert.False(t, IsAuthError(err))
}

func TestIsAuthError403MissingCause(t *testing.T) {
	// No captured response at all: conservative default, not an auth error.
	assert.False(t, IsAuthError(&monarch.TransportServerError{Code: http.StatusForbidden}))

	// Cause present but headers absent.
	err := &monarch.TransportServerError{
		Code:  http.StatusForbidden,
		Cause: &monarch.HTTPCause{StatusCode: http.StatusForbidden},
	}
	assert.False(t, IsAuthError(err))
}

func TestIsAuthErrorOtherStatuses(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		err := &monarch.TransportServerError{Code: code}
		assert.False(t, IsAuthError(err), "status %d must not classify as auth error", code)
	}
}

func TestIsAuthErrorLoginFailed(t *testing.T) {
	assert.True(t, IsAuthError(&monarch.LoginFailedError{Reason: "credentials rejected"}))
}

func TestIsAuthErrorWrapped(t *testing.T) {
	inner := &monarch.TransportServerError{Code: http.StatusUnauthorized}
	assert.True(t, IsAuthError(fmt.Errorf("during get_accounts: %w", inner)))
}

func TestIsAuthErrorUnrelated(t *testing.T) {
	assert.False(t, IsAuthError(errors.New("random error")))
	assert.False(t, IsAuthError(&monarch.TransportError{Err: errors.New("connection refused")}))
	assert.False(t, IsAuthError(&monarch.TransportQueryError{Operation: "GetAccounts"}))
	assert.False(t, IsAuthError(nil))
}
