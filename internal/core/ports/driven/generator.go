package driven

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// GroundedGenerator issues generation requests against the AI backend.
// Implementations normalise their transport's response shape into
// domain.GroundedAnswer before returning, so downstream citation logic never
// sees transport-specific structures.
type GroundedGenerator interface {
	// GenerateGrounded runs a search-grounded generation for the query and
	// returns the answer text plus grounding metadata. Metadata may be nil
	// when the model returned no grounding.
	GenerateGrounded(ctx context.Context, query string) (*domain.GroundedAnswer, error)

	// Summarise produces a plain (ungrounded) summary of content, targeting
	// maxLength characters. Used by the content pipeline's excerpt and
	// summary modes.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)
}

// Summariser is the subset of GroundedGenerator the content pipeline needs.
// It is optional: a nil Summariser degrades reduction to plain truncation.
type Summariser interface {
	Summarise(ctx context.Context, content string, maxLength int) (string, error)
}
