// Package monarch is the client for the Monarch Money GraphQL API.
//
// The client deliberately exposes its failure modes as a closed set of typed
// errors so the session layer can classify them without inspecting strings:
//
//   - *TransportError: the request produced no response (network failure)
//   - *TransportServerError: an HTTP failure status; Cause keeps the
//     response headers so callers can distinguish a JSON API rejection from
//     an HTML edge-firewall page
//   - *TransportQueryError: a 200 response whose GraphQL errors array is
//     non-empty (well-formed request rejected by business logic)
//   - *LoginFailedError: credentials rejected at login time
//
// Domain operations return the decoded GraphQL data as map[string]any; the
// tool layer owns the shaping of those payloads for display.
package monarch
