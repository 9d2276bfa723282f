package monarch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"monarchmcp/pkg/logging"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the production Monarch Money API endpoint.
	DefaultBaseURL = "https://api.monarchmoney.com"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	loginPath   = "/auth/login/"
	graphqlPath = "/graphql"
)

// Client is an authenticated connection to the Monarch Money API.
// A zero-value token means the client is not yet logged in; callers obtain a
// token either through Login or by seeding a persisted one with SetToken.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	// deviceUUID identifies this install to the Monarch API. Generated once
	// per client; the API uses it to decide whether to challenge for MFA.
	deviceUUID string
}

// ClientOption configures the Monarch client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API endpoint. Used by tests against httptest
// servers and by users pointing at a mirror.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithToken seeds the client with a previously persisted session token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new Monarch Money client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:    DefaultBaseURL,
		deviceUUID: uuid.NewString(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token returns the current session token, or "" when not logged in.
func (c *Client) Token() string {
	return c.token
}

// SetToken replaces the client's session token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// loginRequest is the JSON body for the password login endpoint.
type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	TOTP          string `json:"totp,omitempty"`
	TrustedDevice bool   `json:"trusted_device"`
	SupportsMFA   bool   `json:"supports_mfa"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ErrorCode string `json:"error_code"`
	Detail    string `json:"detail"`
}

// Login authenticates with email and password and captures the session
// token on success. Accounts with MFA enabled must use LoginWithTOTP.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.login(ctx, email, password, "")
}

// LoginWithTOTP authenticates with email, password, and a time-based
// one-time code.
func (c *Client) LoginWithTOTP(ctx context.Context, email, password, totp string) error {
	return c.login(ctx, email, password, totp)
}

func (c *Client) login(ctx context.Context, email, password, totp string) error {
	body, err := json.Marshal(loginRequest{
		Username:      email,
		Password:      password,
		TOTP:          totp,
		TrustedDevice: true,
		SupportsMFA:   true,
	})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	var parsed loginResponse
	// The login endpoint answers JSON for both success and rejection; a body
	// that does not parse means we never reached it (proxy page, outage).
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return &TransportServerError{
			Code:  resp.StatusCode,
			Cause: &HTTPCause{StatusCode: resp.StatusCode, Headers: resp.Header},
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK && parsed.Token != "":
		c.token = parsed.Token
		logging.Debug("Monarch", "login succeeded for %s", email)
		return nil
	case parsed.ErrorCode == "MFA_REQUIRED":
		return &LoginFailedError{Reason: "multi-factor code required"}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		reason := parsed.Detail
		if reason == "" {
			reason = "credentials rejected"
		}
		return &LoginFailedError{Reason: reason}
	default:
		return &TransportServerError{
			Code:  resp.StatusCode,
			Cause: &HTTPCause{StatusCode: resp.StatusCode, Headers: resp.Header},
		}
	}
}

// graphqlRequest is the JSON body for a GraphQL call.
type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// GQLCall executes a single GraphQL operation against the Monarch API.
//
// Failure mapping:
//   - no response at all        -> *TransportError
//   - HTTP status >= 400        -> *TransportServerError (cause keeps headers)
//   - GraphQL errors in a 200   -> *TransportQueryError
func (c *Client) GQLCall(ctx context.Context, operation, query string, variables map[string]any) (map[string]any, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphqlRequest{
		OperationName: operation,
		Query:         query,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+graphqlPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}
	c.setCommonHeaders(req)
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &TransportServerError{
			Code:  resp.StatusCode,
			Cause: &HTTPCause{StatusCode: resp.StatusCode, Headers: resp.Header},
		}
	}

	var parsed graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decoding %s response: %w", operation, err)}
	}

	if len(parsed.Errors) > 0 {
		return nil, &TransportQueryError{Operation: operation, Errors: parsed.Errors}
	}

	return parsed.Data, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Platform", "web")
	req.Header.Set("Device-UUID", c.deviceUUID)
	req.Header.Set("User-Agent", "monarch-mcp")
}
