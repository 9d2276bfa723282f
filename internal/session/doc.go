// Package session owns the Monarch session lifecycle: persisting the bearer
// token in the OS credential store, deciding whether a remote failure means
// the session is stale, and recovering by purging the token and re-opening
// the browser login flow.
//
// The pieces compose in one direction. The Store persists exactly one token
// per install. The Manager acquires an authenticated client from the store,
// then from environment credentials, then fails with ErrAuthenticationNeeded
// after triggering the interactive flow. The Runner executes one remote
// operation and, when IsAuthError classifies its failure as a stale session,
// deletes the token, re-triggers the flow, and replaces the failure with a
// single RecoveryError. Classification and recovery happen here and nowhere
// else; the tool layer only renders whatever reaches it.
package session
