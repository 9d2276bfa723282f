package cmd

import (
	"monarchmcp/internal/monarch"
)

// staticStore is a fixed-content token store for command tests.
type staticStore struct {
	token string
}

func (s *staticStore) LoadToken() (string, error) { return s.token, nil }

func (s *staticStore) SaveToken(token string) error {
	s.token = token
	return nil
}

func (s *staticStore) DeleteToken() error {
	s.token = ""
	return nil
}

func (s *staticStore) AuthenticatedClient() (*monarch.Client, error) {
	if s.token == "" {
		return nil, nil
	}
	return monarch.NewClient(monarch.WithToken(s.token)), nil
}

func (s *staticStore) SaveSession(client *monarch.Client) error {
	s.token = client.Token()
	return nil
}

// countingFlow records how many times the login flow was triggered.
type countingFlow struct {
	count int
}

func (f *countingFlow) Trigger() { f.count++ }
