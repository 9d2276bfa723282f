package authflow

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"monarchmcp/internal/monarch"
	"monarchmcp/internal/session"
	"monarchmcp/pkg/logging"
)

// DefaultListenAddr is the local address the login page is served on.
const DefaultListenAddr = "127.0.0.1:8322"

// Flow serves a local browser login page for Monarch Money. Completing the
// form logs into the provider and persists the session token, after which
// the user retries their original tool call.
//
// Trigger is fire-and-forget: the first call starts the server, every call
// opens the browser, and none of them ever block waiting for the user.
type Flow struct {
	store     session.Store
	newClient func() *monarch.Client

	listenAddr  string
	openBrowser func(url string) error

	startOnce sync.Once
	server    *http.Server
}

// FlowOption configures the Flow.
type FlowOption func(*Flow)

// WithListenAddr overrides the local address the login page binds to.
func WithListenAddr(addr string) FlowOption {
	return func(f *Flow) {
		f.listenAddr = addr
	}
}

// WithClientFactory overrides how login clients are constructed.
func WithClientFactory(factory func() *monarch.Client) FlowOption {
	return func(f *Flow) {
		f.newClient = factory
	}
}

// WithBrowserOpener overrides how the browser is launched. Tests use this
// to avoid opening real windows.
func WithBrowserOpener(opener func(url string) error) FlowOption {
	return func(f *Flow) {
		f.openBrowser = opener
	}
}

// NewFlow creates an interactive login flow that persists sessions through
// the given store.
func NewFlow(store session.Store, opts ...FlowOption) *Flow {
	f := &Flow{
		store:       store,
		newClient:   func() *monarch.Client { return monarch.NewClient() },
		listenAddr:  DefaultListenAddr,
		openBrowser: openBrowser,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Trigger starts the local login server (first call only) and opens the
// browser at the login page. It never blocks on the user and is safe to
// call repeatedly; repeat calls just open another browser tab.
func (f *Flow) Trigger() {
	f.startOnce.Do(f.startServer)

	url := "http://" + f.listenAddr + "/"
	if err := f.openBrowser(url); err != nil {
		logging.Error("AuthFlow", err, "could not open browser; visit %s manually", url)
	}
}

func (f *Flow) startServer() {
	listener, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		// Another process (or an earlier instance) already serves the login
		// page on this port; opening the browser against it still works.
		logging.Warn("AuthFlow", "login server not started on %s: %v", f.listenAddr, err)
		return
	}

	f.server = &http.Server{
		Handler:           f.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := f.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("AuthFlow", err, "login server stopped")
		}
	}()
	logging.Info("AuthFlow", "login page available at http://%s/", f.listenAddr)
}

// Shutdown stops the local login server if it was started.
func (f *Flow) Shutdown(ctx context.Context) error {
	if f.server == nil {
		return nil
	}
	return f.server.Shutdown(ctx)
}

func (f *Flow) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", f.handleLoginPage)
	mux.HandleFunc("POST /login", f.handleLoginSubmit)
	return mux
}

func (f *Flow) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	f.renderForm(w, formState{})
}

func (f *Flow) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	totp := r.PostFormValue("totp")
	if email == "" || password == "" {
		f.renderForm(w, formState{Email: email, Message: "Email and password are required."})
		return
	}

	client := f.newClient()
	ctx, cancel := context.WithTimeout(r.Context(), monarch.DefaultHTTPTimeout)
	defer cancel()

	var err error
	if totp != "" {
		err = client.LoginWithTOTP(ctx, email, password, totp)
	} else {
		err = client.Login(ctx, email, password)
	}

	if err != nil {
		var loginErr *monarch.LoginFailedError
		if errors.As(err, &loginErr) {
			logging.Warn("AuthFlow", "browser login rejected: %s", loginErr.Reason)
			state := formState{Email: email, Message: loginErr.Reason}
			if loginErr.Reason == "multi-factor code required" {
				state.NeedTOTP = true
				state.Message = "Enter the 2FA code from your authenticator app."
			}
			f.renderForm(w, state)
			return
		}
		logging.Error("AuthFlow", err, "browser login failed")
		f.renderForm(w, formState{Email: email, Message: fmt.Sprintf("Login failed: %v", err)})
		return
	}

	if err := f.store.SaveSession(client); err != nil {
		logging.Error("AuthFlow", err, "could not persist session from browser login")
		f.renderForm(w, formState{Email: email, Message: fmt.Sprintf("Logged in, but saving the session failed: %v", err)})
		return
	}

	logging.Info("AuthFlow", "browser login completed; session saved to keyring")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	successTemplate.Execute(w, nil)
}

type formState struct {
	Email    string
	Message  string
	NeedTOTP bool
}

func (f *Flow) renderForm(w http.ResponseWriter, state formState) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTemplate.Execute(w, state); err != nil {
		logging.Error("AuthFlow", err, "rendering login page")
	}
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Monarch Money — Sign In</title>
<style>
body { font-family: sans-serif; max-width: 24rem; margin: 4rem auto; }
label { display: block; margin-top: 1rem; }
input { width: 100%; padding: 0.4rem; }
button { margin-top: 1.5rem; padding: 0.5rem 1.5rem; }
.message { color: #b00; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Monarch Money</h1>
<p>Sign in to connect your assistant. Credentials go directly to Monarch
Money; only the session token is stored, in your system keyring.</p>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<form method="post" action="/login">
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  {{if .NeedTOTP}}<label>2FA code <input type="text" name="totp" autocomplete="one-time-code"></label>{{end}}
  <button type="submit">Sign in</button>
</form>
</body>
</html>`))

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>Signed in</title></head>
<body style="font-family: sans-serif; max-width: 24rem; margin: 4rem auto;">
<h1>Signed in</h1>
<p>Your Monarch Money session is saved. You can close this tab and retry
your request in the assistant.</p>
</body>
</html>`))
