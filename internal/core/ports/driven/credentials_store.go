package driven

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// CredentialsStore reads and writes the persisted OAuth credential record.
// The record lives at a fixed, well-known path and is read and written as
// whole-file JSON.
type CredentialsStore interface {
	// Load reads the persisted credential. Returns domain.ErrAuthRequired
	// when no credential file exists.
	Load(ctx context.Context) (*domain.OAuthCredentials, error)

	// Save overwrites the persisted credential in full.
	Save(ctx context.Context, creds *domain.OAuthCredentials) error
}
