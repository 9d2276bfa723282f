// Package tools exposes Monarch Money operations as MCP tools.
//
// Tool bodies are mechanical: validate arguments, run one remote operation
// through the session runner, and shape the response for display. All
// session-lifecycle decisions (token reuse, credential login, stale-session
// recovery) happen in the session package; the only policy this package owns
// is the error boundary applied at registration, which renders any failure
// into a descriptive string result so the MCP layer never sees an error.
package tools
