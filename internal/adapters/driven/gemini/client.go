// Package gemini provides the grounded-answer client. Two transport paths
// exist: the genai SDK path (api-key mode) and the project-scoped code-assist
// HTTP path (oauth mode). Both normalise their response shape into
// domain.GroundedAnswer before anything downstream sees it.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// Default client configuration values.
const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultEndpoint = "https://cloudcode-pa.googleapis.com"

	requestTimeout = 120 * time.Second
)

// Ensure Client implements the generator port.
var _ driven.GroundedGenerator = (*Client)(nil)

// ClientConfig configures the grounded-answer client.
type ClientConfig struct {
	// Model is the generation model id (default gemini-2.5-flash).
	Model string
	// APIKey enables the SDK transport path when set. Must match the token
	// provider's auth method.
	APIKey string
	// Endpoint overrides the code-assist API base URL. Used in tests.
	Endpoint string
}

// Client issues grounded generation and plain summarisation requests.
type Client struct {
	provider driven.TokenProvider
	model    string
	apiKey   string
	endpoint string
	http     *http.Client

	// SDK path state, created lazily on first use.
	sdkOnce sync.Once
	sdkErr  error
	sdk     *genai.Client

	// projectID caches the resolved code-assist project for the client's
	// lifetime. Guarded by projectMu; a failed handshake is not persisted,
	// so a later call retries it.
	projectMu sync.Mutex
	projectID string

	// backoffUnit scales the retry backoff. Overridden in tests.
	backoffUnit time.Duration
}

// NewClient creates a grounded-answer client over the given token provider.
func NewClient(provider driven.TokenProvider, cfg ClientConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		provider:    provider,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		http:        &http.Client{Timeout: requestTimeout},
		backoffUnit: time.Second,
	}
}

// GenerateGrounded runs a search-grounded generation for the query.
func (c *Client) GenerateGrounded(ctx context.Context, query string) (*domain.GroundedAnswer, error) {
	if c.provider.AuthMethod() == domain.AuthMethodAPIKey {
		return c.sdkGenerate(ctx, query, true)
	}
	return c.assistantGenerate(ctx, query, true)
}

// Summarise produces a plain summary of content targeting maxLength
// characters, without search grounding.
func (c *Client) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	prompt := fmt.Sprintf(summarisePrompt, maxLength, content)

	var answer *domain.GroundedAnswer
	var err error
	if c.provider.AuthMethod() == domain.AuthMethodAPIKey {
		answer, err = c.sdkGenerate(ctx, prompt, false)
	} else {
		answer, err = c.assistantGenerate(ctx, prompt, false)
	}
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// summarisePrompt asks for a bounded plain-text summary.
const summarisePrompt = `Summarise the following content in %d characters or less.
Be concise and capture the key points. Return only the summary text.

Content:
%s`

// ModelName returns the generation model id in use.
func (c *Client) ModelName() string {
	return c.model
}

func logAnswer(path string, answer *domain.GroundedAnswer) {
	chunks, supports := 0, 0
	if answer.Metadata != nil {
		chunks = len(answer.Metadata.Chunks)
		supports = len(answer.Metadata.Supports)
	}
	logger.Debug("%s answer: %d bytes, %d chunks, %d supports", path, len(answer.Text), chunks, supports)
}
