// Package auth provides credential storage and token providers for the
// generation API: a static API key path and an OAuth path with transparent
// refresh against the persisted gemini credential file.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// DefaultCredentialsPath is the well-known credential file shared with the
// gemini CLI, relative to the user's home directory.
const DefaultCredentialsPath = ".gemini/oauth_creds.json"

// Ensure FileCredentialsStore implements the interface.
var _ driven.CredentialsStore = (*FileCredentialsStore)(nil)

// FileCredentialsStore persists the OAuth credential record as whole-file
// JSON at a fixed path.
type FileCredentialsStore struct {
	mu   sync.Mutex
	path string
}

// NewFileCredentialsStore creates a credential store at path. An empty path
// defaults to ~/.gemini/oauth_creds.json.
func NewFileCredentialsStore(path string) (*FileCredentialsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, DefaultCredentialsPath)
	}
	return &FileCredentialsStore{path: path}, nil
}

// Path returns the credential file path.
func (s *FileCredentialsStore) Path() string {
	return s.path
}

// Load reads the persisted credential. Returns domain.ErrAuthRequired when
// the file does not exist.
func (s *FileCredentialsStore) Load(_ context.Context) (*domain.OAuthCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no credential file at %s", domain.ErrAuthRequired, s.path)
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds domain.OAuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: credential file at %s holds no tokens", domain.ErrAuthRequired, s.path)
	}
	return &creds, nil
}

// Save overwrites the persisted credential in full.
func (s *FileCredentialsStore) Save(_ context.Context, creds *domain.OAuthCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}
