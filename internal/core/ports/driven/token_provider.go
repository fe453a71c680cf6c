package driven

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently; concurrent callers
// observe at most one refresh per expiry.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing first if the stored
	// one has expired. Fails with domain.ErrAuthRequired when no credential
	// is persisted and domain.ErrTokenRefreshFailed when the refresh call
	// is rejected.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method (api_key or oauth).
	AuthMethod() domain.AuthMethod
}
