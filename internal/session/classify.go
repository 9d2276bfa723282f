package session

import (
	"errors"
	"net/http"
	"strings"

	"monarchmcp/internal/monarch"
)

// IsAuthError reports whether err represents an authentication failure that
// re-login can fix, as opposed to a transient, permission, or data error.
//
//	401                          -> true
//	403 with a JSON response     -> true (session rejected by the API)
//	403 with HTML or no response -> false (edge firewall / bot challenge;
//	                                re-login cannot fix it)
//	login rejection              -> true
//	anything else                -> false
func IsAuthError(err error) bool {
	var loginErr *monarch.LoginFailedError
	if errors.As(err, &loginErr) {
		return true
	}

	var srvErr *monarch.TransportServerError
	if !errors.As(err, &srvErr) {
		return false
	}

	switch srvErr.Code {
	case http.StatusUnauthorized:
		return true
	case http.StatusForbidden:
		// Absent cause or headers default to false: misclassifying a WAF
		// block as an expired session would churn a valid credential.
		contentType := strings.ToLower(srvErr.Cause.ContentType())
		return strings.Contains(contentType, "json")
	default:
		return false
	}
}
