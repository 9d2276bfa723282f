package session

import (
	"errors"
	"fmt"

	"monarchmcp/internal/monarch"
	"monarchmcp/pkg/logging"

	"github.com/99designs/keyring"
)

const (
	// keyringService names the credential store entry owner. The OS keyring
	// scopes secrets per service, so this keeps exactly one token per install.
	keyringService = "monarch-mcp"

	tokenKey = "monarch-token"
)

// Store persists the single Monarch session token across process restarts
// and builds client handles carrying it.
type Store interface {
	// LoadToken returns the persisted token, or "" when none is stored.
	// An error means the credential store itself could not be accessed.
	LoadToken() (string, error)

	// SaveToken overwrites the stored token. Idempotent.
	SaveToken(token string) error

	// DeleteToken removes the stored token. Deleting an absent token is
	// not an error.
	DeleteToken() error

	// AuthenticatedClient returns a client carrying the persisted token,
	// or nil (with no error) when no token is stored, so callers can fall
	// through to other acquisition paths.
	AuthenticatedClient() (*monarch.Client, error)

	// SaveSession persists the client's current token.
	SaveSession(client *monarch.Client) error
}

// KeyringStore stores the token in the OS credential store (macOS Keychain,
// Windows Credential Manager, Linux Secret Service).
type KeyringStore struct {
	ring keyring.Keyring

	// clientOpts are applied to every client the store constructs, so the
	// whole process talks to the same endpoint (tests point this at a
	// local server).
	clientOpts []monarch.ClientOption
}

// NewKeyringStore opens the OS credential store.
func NewKeyringStore(clientOpts ...monarch.ClientOption) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
	})
	if err != nil {
		return nil, fmt.Errorf("opening OS keyring: %w", err)
	}
	return NewStoreWithKeyring(ring, clientOpts...), nil
}

// NewStoreWithKeyring wraps an already-open keyring. Tests pass
// keyring.NewArrayKeyring to avoid touching the real credential store.
func NewStoreWithKeyring(ring keyring.Keyring, clientOpts ...monarch.ClientOption) *KeyringStore {
	return &KeyringStore{ring: ring, clientOpts: clientOpts}
}

// LoadToken returns the persisted token, "" when absent.
func (s *KeyringStore) LoadToken() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("keyring access failed: %w", err)
	}
	return string(item.Data), nil
}

// SaveToken overwrites the stored token.
func (s *KeyringStore) SaveToken(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   tokenKey,
		Label: "Monarch Money session token",
		Data:  []byte(token),
	})
	if err != nil {
		return fmt.Errorf("keyring access failed: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token. Idempotent.
func (s *KeyringStore) DeleteToken() error {
	err := s.ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keyring access failed: %w", err)
	}
	return nil
}

// AuthenticatedClient returns a client carrying the persisted token, or nil
// when no token is stored.
func (s *KeyringStore) AuthenticatedClient() (*monarch.Client, error) {
	token, err := s.LoadToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	opts := append([]monarch.ClientOption{monarch.WithToken(token)}, s.clientOpts...)
	return monarch.NewClient(opts...), nil
}

// SaveSession persists the client's current token.
func (s *KeyringStore) SaveSession(client *monarch.Client) error {
	token := client.Token()
	if token == "" {
		return errors.New("client has no session token to save")
	}
	if err := s.SaveToken(token); err != nil {
		return err
	}
	logging.Info("Session", "saved authenticated session to keyring")
	return nil
}
