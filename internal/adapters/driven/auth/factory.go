package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// NewTokenProvider selects the credential source once at startup: an explicit
// API key takes precedence, then a persisted OAuth credential file. With
// neither present, construction fails outright; this is fatal, not retried.
func NewTokenProvider(ctx context.Context, apiKey string, store driven.CredentialsStore) (driven.TokenProvider, error) {
	if apiKey != "" {
		logger.Debug("using api-key authentication")
		return NewAPIKeyProvider(apiKey), nil
	}

	if store == nil {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or authenticate with the gemini CLI", domain.ErrAuthRequired)
	}

	// Probe the credential file so a missing login fails now, not on the
	// first search.
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("selecting auth mode: %w", err)
	}

	logger.Debug("using oauth authentication")
	return NewOAuthTokenProvider(store, OAuthConfig{}), nil
}
