// Package logging provides structured logging for monarch-mcp built on Go's
// standard slog package.
//
// Every log entry carries a subsystem identifier so that the keyring store,
// session manager, auth flow, and tool layer can be filtered independently:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Session", "using stored token (length %d)", len(token))
//	logging.Error("Tools", err, "Monarch API HTTP %d error %s", code, op)
//
// Output always goes to the writer passed to Init, never stdout: when the
// process runs as an MCP server, stdout carries the protocol stream.
package logging
