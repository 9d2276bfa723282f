// Package authflow implements the interactive browser login.
//
// The session layer treats this as an opaque trigger: when no usable
// credential exists, or a stored token turns out to be stale, it calls
// Trigger and immediately fails the current tool invocation with a retry
// instruction. Trigger starts a small localhost HTTP server (once) that
// serves a Monarch Money login form, performs the login, and persists the
// resulting token through the session store, then opens the user's browser
// at that page. Nothing in this package ever blocks a tool call waiting for
// the user to finish signing in.
package authflow
