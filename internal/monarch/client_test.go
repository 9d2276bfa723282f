package monarch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestLoginSuccess(t *testing.T) {
	var gotBody loginRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, loginPath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Device-UUID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})

	err := client.Login(context.Background(), "user@test.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", client.Token())
	assert.Equal(t, "user@test.com", gotBody.Username)
	assert.Empty(t, gotBody.TOTP)
}

func TestLoginWithTOTPSendsCode(t *testing.T) {
	var gotBody loginRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-mfa"})
	})

	err := client.LoginWithTOTP(context.Background(), "user@test.com", "secret", "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", gotBody.TOTP)
}

func TestLoginCredentialsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Unable to log in with provided credentials."})
	})

	err := client.Login(context.Background(), "user@test.com", "wrong")
	var loginErr *LoginFailedError
	require.ErrorAs(t, err, &loginErr)
	assert.Contains(t, loginErr.Reason, "Unable to log in")
	assert.Empty(t, client.Token())
}

func TestLoginMFARequired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error_code": "MFA_REQUIRED"})
	})

	err := client.Login(context.Background(), "user@test.com", "secret")
	var loginErr *LoginFailedError
	require.ErrorAs(t, err, &loginErr)
	assert.Contains(t, loginErr.Reason, "multi-factor")
}

func TestLoginNonJSONResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	})

	err := client.Login(context.Background(), "user@test.com", "secret")
	var srvErr *TransportServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusBadGateway, srvErr.Code)
}

func TestGQLCallSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, graphqlPath, r.URL.Path)
		assert.Equal(t, "Token tok-abc", r.Header.Get("Authorization"))

		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GetAccounts", req.OperationName)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"accounts": []any{}},
		})
	})
	client.SetToken("tok-abc")

	data, err := client.GQLCall(context.Background(), "GetAccounts", queryGetAccounts, nil)
	require.NoError(t, err)
	assert.Contains(t, data, "accounts")
}

func TestGQLCallServerErrorKeepsHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>blocked</html>"))
	})

	_, err := client.GQLCall(context.Background(), "GetAccounts", queryGetAccounts, nil)
	var srvErr *TransportServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusForbidden, srvErr.Code)
	require.NotNil(t, srvErr.Cause)
	assert.Contains(t, srvErr.Cause.ContentType(), "text/html")
}

func TestGQLCallUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GQLCall(context.Background(), "GetAccounts", queryGetAccounts, nil)
	var srvErr *TransportServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusUnauthorized, srvErr.Code)
}

func TestGQLCallQueryError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "Record not found"}},
		})
	})

	_, err := client.GQLCall(context.Background(), "GetAccounts", queryGetAccounts, nil)
	var queryErr *TransportQueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Contains(t, queryErr.Error(), "Record not found")
}

func TestGQLCallConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewClient(WithBaseURL(url))

	_, err := client.GQLCall(context.Background(), "GetAccounts", queryGetAccounts, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestIsAccountsRefreshComplete(t *testing.T) {
	inProgress := true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"accounts": []any{
					map[string]any{"id": "a1", "hasSyncInProgress": inProgress},
					map[string]any{"id": "a2", "hasSyncInProgress": false},
				},
			},
		})
	})

	done, err := client.IsAccountsRefreshComplete(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.False(t, done)

	inProgress = false
	done, err = client.IsAccountsRefreshComplete(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHTTPCauseContentType(t *testing.T) {
	var nilCause *HTTPCause
	assert.Empty(t, nilCause.ContentType())

	cause := &HTTPCause{StatusCode: 403}
	assert.Empty(t, cause.ContentType())

	cause.Headers = http.Header{"Content-Type": []string{"application/json"}}
	assert.Equal(t, "application/json", cause.ContentType())
}
