package session

import (
	"context"
	"errors"
	"os"

	"monarchmcp/internal/monarch"
	"monarchmcp/pkg/logging"

	"golang.org/x/sync/singleflight"
)

// ErrAuthenticationNeeded is returned when neither a stored token nor
// ambient credentials exist. The interactive flow has already been
// triggered when callers see this error.
var ErrAuthenticationNeeded = errors.New(
	"Authentication needed! A login page has been opened in your browser — please sign in and try again.")

// FlowTrigger opens the interactive browser login flow. Implementations
// must be non-blocking and safe to call repeatedly.
type FlowTrigger interface {
	Trigger()
}

// CredentialSource supplies ambient login credentials. Either value may be
// empty, in which case the credential path is skipped.
type CredentialSource func() (email, password string)

// EnvCredentials reads MONARCH_EMAIL and MONARCH_PASSWORD.
func EnvCredentials() (string, string) {
	return os.Getenv("MONARCH_EMAIL"), os.Getenv("MONARCH_PASSWORD")
}

// Manager obtains a working, authenticated Monarch client. Acquisition is
// attempted in strict order: persisted token, ambient credentials,
// interactive flow (which fails the current call).
type Manager struct {
	store      Store
	flow       FlowTrigger
	creds      CredentialSource
	newClient  func() *monarch.Client
	loginGroup singleflight.Group
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithCredentials overrides the ambient credential source.
func WithCredentials(creds CredentialSource) ManagerOption {
	return func(m *Manager) {
		m.creds = creds
	}
}

// WithClientFactory overrides how fresh (unauthenticated) clients are
// constructed for the credential login path.
func WithClientFactory(factory func() *monarch.Client) ManagerOption {
	return func(m *Manager) {
		m.newClient = factory
	}
}

// NewManager creates a session manager over the given token store and
// interactive flow trigger.
func NewManager(store Store, flow FlowTrigger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		flow:      flow,
		creds:     EnvCredentials,
		newClient: func() *monarch.Client { return monarch.NewClient() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AcquireClient returns an authenticated client, short-circuiting on the
// first acquisition path that succeeds.
//
// A persisted token is used without any network call. A credential login
// failure propagates unchanged: the credentials themselves are wrong, not
// the session, so recovery logic must not touch it.
func (m *Manager) AcquireClient(ctx context.Context) (*monarch.Client, error) {
	client, err := m.store.AuthenticatedClient()
	if err != nil {
		return nil, err
	}
	if client != nil {
		logging.Info("Session", "using authenticated client from secure keyring storage")
		return client, nil
	}

	email, password := m.creds()
	if email != "" && password != "" {
		return m.loginWithCredentials(ctx, email, password)
	}

	// No credentials anywhere: open browser login and fail this call.
	m.flow.Trigger()
	return nil, ErrAuthenticationNeeded
}

// loginWithCredentials performs the environment-credential login. Concurrent
// callers collapse into a single login so the provider sees exactly one
// authentication attempt and the store exactly one save.
func (m *Manager) loginWithCredentials(ctx context.Context, email, password string) (*monarch.Client, error) {
	result, err, _ := m.loginGroup.Do("env-login", func() (any, error) {
		client := m.newClient()
		if err := client.Login(ctx, email, password); err != nil {
			logging.Error("Session", err, "failed to login to Monarch Money")
			return nil, err
		}
		logging.Info("Session", "successfully logged into Monarch Money with environment credentials")

		if err := m.store.SaveSession(client); err != nil {
			// The session works for this process even if persisting it
			// failed; report the store problem and carry on.
			logging.Error("Session", err, "could not persist session to keyring")
		}
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*monarch.Client), nil
}
