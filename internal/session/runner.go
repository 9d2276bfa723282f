package session

import (
	"context"
	"errors"

	"monarchmcp/internal/monarch"
	"monarchmcp/pkg/logging"

	"golang.org/x/sync/semaphore"
)

const recoveryMessage = "Your session has expired. A login page has been opened in " +
	"your browser — please sign in and try again."

// DefaultMaxConcurrent bounds how many units of remote work may run at once.
const DefaultMaxConcurrent = 8

// RecoveryError replaces a classified auth failure after the stale token has
// been purged and the interactive flow re-triggered. The original failure
// stays reachable through Unwrap for diagnostics.
type RecoveryError struct {
	cause error
}

func (e *RecoveryError) Error() string {
	return recoveryMessage
}

func (e *RecoveryError) Unwrap() error {
	return e.cause
}

// Runner executes units of remote work and recovers from stale sessions.
// Each unit runs on its own goroutine drawn from a bounded pool; Run blocks
// until the unit completes, giving callers a synchronous call site with no
// shared scheduler state between invocations.
type Runner struct {
	store Store
	flow  FlowTrigger
	sem   *semaphore.Weighted
}

// NewRunner creates a runner over the given store and flow trigger.
// maxConcurrent values below one fall back to DefaultMaxConcurrent.
func NewRunner(store Store, flow FlowTrigger, maxConcurrent int64) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Runner{
		store: store,
		flow:  flow,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}
}

// Run executes work to completion and returns its result unchanged on
// success.
//
// On failure, only the two error types the classifier recognizes are
// inspected; when classified as an auth failure the stored token is deleted,
// the interactive flow is re-triggered, and a *RecoveryError wrapping the
// original failure is returned. Every other error passes through unchanged.
// There is no retry: a second failure after recovery surfaces as a plain
// error on the next invocation.
func (r *Runner) Run(ctx context.Context, operation string, work func(context.Context) (any, error)) (any, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer r.sem.Release(1)
		result, err := work(ctx)
		done <- outcome{result: result, err: err}
	}()
	out := <-done

	if out.err == nil {
		return out.result, nil
	}
	if !r.recognized(out.err) || !IsAuthError(out.err) {
		return nil, out.err
	}

	logging.Warn("Session", "token appears expired during %s — clearing and triggering re-auth", operation)
	if err := r.store.DeleteToken(); err != nil {
		// Deletion is idempotent; a store failure here still warrants the
		// re-auth instruction, so report it and continue.
		logging.Error("Session", err, "could not delete stale token")
	}
	r.flow.Trigger()
	return nil, &RecoveryError{cause: out.err}
}

// recognized limits recovery to the closed error set the classifier covers.
func (r *Runner) recognized(err error) bool {
	var srvErr *monarch.TransportServerError
	var loginErr *monarch.LoginFailedError
	return errors.As(err, &srvErr) || errors.As(err, &loginErr)
}
