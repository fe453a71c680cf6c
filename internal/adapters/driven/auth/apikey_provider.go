package auth

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// Ensure APIKeyProvider implements the interface.
var _ driven.TokenProvider = (*APIKeyProvider)(nil)

// APIKeyProvider provides a static API key. It never expires and never
// refreshes; api-key mode is terminal once selected at startup.
type APIKeyProvider struct {
	key string
}

// NewAPIKeyProvider creates a provider around a static API key.
func NewAPIKeyProvider(key string) *APIKeyProvider {
	return &APIKeyProvider{key: key}
}

// GetToken returns the API key.
func (p *APIKeyProvider) GetToken(_ context.Context) (string, error) {
	return p.key, nil
}

// AuthMethod returns AuthMethodAPIKey.
func (p *APIKeyProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodAPIKey
}
