package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"monarchmcp/internal/monarch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStore implements Store with call counters for the recovery tests.
type spyStore struct {
	mu          sync.Mutex
	token       string
	loadErr     error
	saveCount   int
	deleteCount int
}

func (s *spyStore) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.loadErr
}

func (s *spyStore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saveCount++
	return nil
}

func (s *spyStore) DeleteToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.deleteCount++
	return nil
}

func (s *spyStore) AuthenticatedClient() (*monarch.Client, error) {
	token, err := s.LoadToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	return monarch.NewClient(monarch.WithToken(token)), nil
}

func (s *spyStore) SaveSession(client *monarch.Client) error {
	return s.SaveToken(client.Token())
}

func (s *spyStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func (s *spyStore) deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteCount
}

// spyFlow counts interactive flow triggers.
type spyFlow struct {
	triggers atomic.Int32
}

func (f *spyFlow) Trigger() {
	f.triggers.Add(1)
}

func staticCredentials(email, password string) CredentialSource {
	return func() (string, string) { return email, password }
}

func noCredentials() (string, string) { return "", "" }

// newLoginServer returns a factory producing clients against a local login
// endpoint, plus a counter of login attempts the endpoint has served.
func newLoginServer(t *testing.T) (func() *monarch.Client, *atomic.Int32) {
	t.Helper()
	var logins atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token"})
	}))
	t.Cleanup(srv.Close)
	factory := func() *monarch.Client {
		return monarch.NewClient(monarch.WithBaseURL(srv.URL))
	}
	return factory, &logins
}

func TestAcquireClientUsesStoredToken(t *testing.T) {
	store := &spyStore{token: "stored-token"}
	flow := &spyFlow{}
	factory, logins := newLoginServer(t)
	manager := NewManager(store, flow,
		WithCredentials(staticCredentials("user@test.com", "secret")),
		WithClientFactory(factory))

	client, err := manager.AcquireClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "stored-token", client.Token())
	assert.Equal(t, int32(0), logins.Load(), "stored token must not trigger a login")
	assert.Equal(t, int32(0), flow.triggers.Load())
}

func TestAcquireClientEnvCredentials(t *testing.T) {
	store := &spyStore{}
	flow := &spyFlow{}
	factory, logins := newLoginServer(t)
	manager := NewManager(store, flow,
		WithCredentials(staticCredentials("user@test.com", "secret")),
		WithClientFactory(factory))

	client, err := manager.AcquireClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "fresh-token", client.Token())
	assert.Equal(t, int32(1), logins.Load(), "login must happen exactly once")
	assert.Equal(t, 1, store.saves(), "session must be persisted exactly once")
	assert.Equal(t, int32(0), flow.triggers.Load())
}

func TestAcquireClientLoginFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
	}))
	t.Cleanup(srv.Close)

	store := &spyStore{}
	flow := &spyFlow{}
	manager := NewManager(store, flow,
		WithCredentials(staticCredentials("user@test.com", "wrong")),
		WithClientFactory(func() *monarch.Client {
			return monarch.NewClient(monarch.WithBaseURL(srv.URL))
		}))

	_, err := manager.AcquireClient(context.Background())
	var loginErr *monarch.LoginFailedError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, 0, store.saves())
	assert.Equal(t, int32(0), flow.triggers.Load(), "credential rejection must not trigger the browser flow")
}

func TestAcquireClientNoCredentials(t *testing.T) {
	store := &spyStore{}
	flow := &spyFlow{}
	manager := NewManager(store, flow, WithCredentials(noCredentials))

	_, err := manager.AcquireClient(context.Background())
	require.ErrorIs(t, err, ErrAuthenticationNeeded)
	assert.Contains(t, err.Error(), "Authentication needed")
	assert.Equal(t, int32(1), flow.triggers.Load(), "interactive flow must be triggered exactly once")
}

func TestAcquireClientStoreAccessError(t *testing.T) {
	store := &spyStore{loadErr: errors.New("keyring access failed: dbus unavailable")}
	flow := &spyFlow{}
	manager := NewManager(store, flow, WithCredentials(noCredentials))

	_, err := manager.AcquireClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring access failed")
	assert.Equal(t, int32(0), flow.triggers.Load())
}

func TestAcquireClientConcurrentLoginsCollapse(t *testing.T) {
	store := &spyStore{}
	flow := &spyFlow{}

	var logins atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		<-release
		json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token"})
	}))
	t.Cleanup(srv.Close)

	manager := NewManager(store, flow,
		WithCredentials(staticCredentials("user@test.com", "secret")),
		WithClientFactory(func() *monarch.Client {
			return monarch.NewClient(monarch.WithBaseURL(srv.URL))
		}))

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.AcquireClient(context.Background())
		}(i)
	}
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), logins.Load(), "concurrent acquisitions must share one login")
	assert.Equal(t, 1, store.saves())
}
