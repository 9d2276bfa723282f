package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"monarchmcp/internal/monarch"
	"monarchmcp/internal/session"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlow(t *testing.T, monarchHandler http.HandlerFunc) (*Flow, session.Store) {
	t.Helper()
	api := httptest.NewServer(monarchHandler)
	t.Cleanup(api.Close)

	store := session.NewStoreWithKeyring(keyring.NewArrayKeyring(nil))
	flow := NewFlow(store,
		WithClientFactory(func() *monarch.Client {
			return monarch.NewClient(monarch.WithBaseURL(api.URL))
		}),
		WithBrowserOpener(func(string) error { return nil }))
	return flow, store
}

func postLoginForm(t *testing.T, flow *Flow, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	flow.routes().ServeHTTP(rec, req)
	return rec
}

func TestLoginPageRenders(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	flow.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Monarch Money")
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestLoginSubmitSavesSession(t *testing.T) {
	flow, store := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "browser-token"})
	})

	rec := postLoginForm(t, flow, url.Values{
		"email":    {"user@test.com"},
		"password": {"secret"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in")

	token, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "browser-token", token)
}

func TestLoginSubmitRejectedShowsMessage(t *testing.T) {
	flow, store := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Unable to log in with provided credentials."})
	})

	rec := postLoginForm(t, flow, url.Values{
		"email":    {"user@test.com"},
		"password": {"wrong"},
	})

	assert.Contains(t, rec.Body.String(), "Unable to log in")

	token, err := store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token, "rejected login must not persist anything")
}

func TestLoginSubmitMFAPromptsForCode(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if totp, _ := body["totp"].(string); totp == "123456" {
			json.NewEncoder(w).Encode(map[string]string{"token": "mfa-token"})
			return
		}
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error_code": "MFA_REQUIRED"})
	})

	rec := postLoginForm(t, flow, url.Values{
		"email":    {"user@test.com"},
		"password": {"secret"},
	})
	assert.Contains(t, rec.Body.String(), `name="totp"`)

	rec = postLoginForm(t, flow, url.Values{
		"email":    {"user@test.com"},
		"password": {"secret"},
		"totp":     {"123456"},
	})
	assert.Contains(t, rec.Body.String(), "Signed in")
}

func TestLoginSubmitMissingFields(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := postLoginForm(t, flow, url.Values{"email": {"user@test.com"}})
	assert.Contains(t, rec.Body.String(), "required")
}

func TestTriggerIsNonBlockingAndRepeatable(t *testing.T) {
	var opens atomic.Int32
	store := session.NewStoreWithKeyring(keyring.NewArrayKeyring(nil))
	flow := NewFlow(store,
		WithListenAddr("127.0.0.1:0"),
		WithBrowserOpener(func(string) error {
			opens.Add(1)
			return nil
		}))
	t.Cleanup(func() { flow.Shutdown(context.Background()) })

	flow.Trigger()
	flow.Trigger()
	flow.Trigger()

	assert.Equal(t, int32(3), opens.Load(), "every trigger opens the browser")
}
