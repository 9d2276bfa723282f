package monarch

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPCause captures the HTTP response underlying a transport server error.
// Headers are optional: some failures surface without a captured response,
// and classification code must treat a missing cause conservatively.
type HTTPCause struct {
	StatusCode int
	Headers    http.Header
}

func (c *HTTPCause) Error() string {
	return fmt.Sprintf("HTTP %d response", c.StatusCode)
}

// ContentType returns the response content-type, or "" when no headers
// were captured.
func (c *HTTPCause) ContentType() string {
	if c == nil || c.Headers == nil {
		return ""
	}
	return c.Headers.Get("Content-Type")
}

// TransportServerError reports a failure HTTP status from the Monarch API.
// Cause, when present, carries the raw response status and headers.
type TransportServerError struct {
	Code  int
	Cause *HTTPCause
}

func (e *TransportServerError) Error() string {
	return fmt.Sprintf("Monarch API returned HTTP %d", e.Code)
}

func (e *TransportServerError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// GraphQLError is a single error entry from a GraphQL response body.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// TransportQueryError reports a well-formed request that the Monarch API
// rejected at the query level (HTTP 200 with a GraphQL errors array).
type TransportQueryError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *TransportQueryError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("query %s failed", e.Operation)
	}
	messages := make([]string, 0, len(e.Errors))
	for _, gqlErr := range e.Errors {
		messages = append(messages, gqlErr.Message)
	}
	return fmt.Sprintf("query %s failed: %s", e.Operation, strings.Join(messages, "; "))
}

// TransportError reports a request that produced no response at all
// (connection refused, DNS failure, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("connection to Monarch API failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LoginFailedError reports credentials rejected at login time.
type LoginFailedError struct {
	Reason string
}

func (e *LoginFailedError) Error() string {
	if e.Reason == "" {
		return "Monarch Money login failed"
	}
	return fmt.Sprintf("Monarch Money login failed: %s", e.Reason)
}
