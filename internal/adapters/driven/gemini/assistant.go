package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// Onboarding handshake constants.
const (
	onboardPollAttempts = 30
	onboardPollInterval = time.Second
	defaultTierID       = "free-tier"
)

// clientMetadata identifies this client to the code-assist API.
var clientMetadata = map[string]string{
	"ideType":    "IDE_UNSPECIFIED",
	"platform":   "PLATFORM_UNSPECIFIED",
	"pluginType": "GEMINI",
}

// Wire shapes for the code-assist API.

type assistantRequest struct {
	Model   string           `json:"model"`
	Project string           `json:"project"`
	Request assistantPayload `json:"request"`
}

type assistantPayload struct {
	Contents []assistantContent `json:"contents"`
	Tools    []assistantTool    `json:"tools,omitempty"`
}

type assistantContent struct {
	Role  string          `json:"role"`
	Parts []assistantPart `json:"parts"`
}

type assistantPart struct {
	Text string `json:"text"`
}

type assistantTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type assistantResponse struct {
	Response struct {
		Candidates []struct {
			Content struct {
				Parts []assistantPart `json:"parts"`
			} `json:"content"`
			GroundingMetadata *wireGroundingMetadata `json:"groundingMetadata"`
		} `json:"candidates"`
	} `json:"response"`
}

type wireGroundingMetadata struct {
	GroundingChunks []struct {
		Web *struct {
			URI   string `json:"uri"`
			Title string `json:"title"`
		} `json:"web"`
	} `json:"groundingChunks"`
	GroundingSupports []struct {
		Segment *struct {
			StartIndex int    `json:"startIndex"`
			EndIndex   int    `json:"endIndex"`
			Text       string `json:"text"`
		} `json:"segment"`
		GroundingChunkIndices []int `json:"groundingChunkIndices"`
	} `json:"groundingSupports"`
}

type loadResponse struct {
	CloudAICompanionProject string `json:"cloudaicompanionProject"`
	AllowedTiers            []struct {
		ID        string `json:"id"`
		IsDefault bool   `json:"isDefault"`
	} `json:"allowedTiers"`
}

type onboardOperation struct {
	Done     bool `json:"done"`
	Response struct {
		CloudAICompanionProject struct {
			ID string `json:"id"`
		} `json:"cloudaicompanionProject"`
	} `json:"response"`
}

// assistantGenerate runs one generation through the project-scoped assistant
// path. The whole call, project resolution aside, is wrapped in bounded retry
// for rate-limit and transient network failures.
func (c *Client) assistantGenerate(ctx context.Context, prompt string, grounded bool) (*domain.GroundedAnswer, error) {
	project, err := c.resolveProject(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := assistantRequest{
		Model:   c.model,
		Project: project,
		Request: assistantPayload{
			Contents: []assistantContent{
				{Role: "user", Parts: []assistantPart{{Text: prompt}}},
			},
		},
	}
	if grounded {
		reqBody.Request.Tools = []assistantTool{{GoogleSearch: &struct{}{}}}
	}

	var resp assistantResponse
	err = c.withRetry(ctx, func() error {
		return c.post(ctx, ":generateContent", reqBody, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("assistant generate: %w", err)
	}

	answer := normaliseAssistantResponse(&resp)
	logAnswer("assistant", answer)
	return answer, nil
}

// resolveProject returns the cached code-assist project id, running the
// two-step onboarding handshake on first use. A failed handshake is fatal to
// the current call but not cached; the next call retries it.
func (c *Client) resolveProject(ctx context.Context) (string, error) {
	c.projectMu.Lock()
	defer c.projectMu.Unlock()

	if c.projectID != "" {
		return c.projectID, nil
	}

	var load loadResponse
	loadReq := map[string]any{"metadata": clientMetadata}
	if err := c.post(ctx, ":loadCodeAssist", loadReq, &load); err != nil {
		return "", fmt.Errorf("%w: loading tiers: %v", domain.ErrProjectResolution, err)
	}

	if load.CloudAICompanionProject != "" {
		c.projectID = load.CloudAICompanionProject
		logger.Debug("resolved existing project %s", c.projectID)
		return c.projectID, nil
	}

	tierID := defaultTierID
	for _, tier := range load.AllowedTiers {
		if tier.IsDefault {
			tierID = tier.ID
			break
		}
	}

	onboardReq := map[string]any{
		"tierId":   tierID,
		"metadata": clientMetadata,
	}
	for attempt := 0; attempt < onboardPollAttempts; attempt++ {
		var op onboardOperation
		if err := c.post(ctx, ":onboardUser", onboardReq, &op); err != nil {
			return "", fmt.Errorf("%w: onboarding into tier %s: %v", domain.ErrProjectResolution, tierID, err)
		}
		if op.Done {
			if op.Response.CloudAICompanionProject.ID == "" {
				return "", fmt.Errorf("%w: onboarding finished without a project id", domain.ErrProjectResolution)
			}
			c.projectID = op.Response.CloudAICompanionProject.ID
			logger.Debug("onboarded into tier %s, project %s", tierID, c.projectID)
			return c.projectID, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrProjectResolution, ctx.Err())
		case <-time.After(onboardPollInterval):
		}
	}

	return "", fmt.Errorf("%w: onboarding did not complete after %d polls", domain.ErrProjectResolution, onboardPollAttempts)
}

// post issues one authenticated JSON POST against the code-assist endpoint.
// 429 responses map to domain.ErrRateLimited and 5xx to a transient error so
// the retry wrapper can classify them.
func (c *Client) post(ctx context.Context, method string, body, out any) error {
	token, err := c.provider.GetToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1internal" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transientError{err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429: %s", domain.ErrRateLimited, truncateBody(respBody))
	case resp.StatusCode >= 500:
		return &transientError{err: fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(respBody))}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// normaliseAssistantResponse flattens the code-assist wire shape into the
// internal answer shape. Missing candidates or metadata degrade to an
// empty/citation-free answer, never an error.
func normaliseAssistantResponse(resp *assistantResponse) *domain.GroundedAnswer {
	answer := &domain.GroundedAnswer{}
	if resp == nil || len(resp.Response.Candidates) == 0 {
		return answer
	}

	candidate := resp.Response.Candidates[0]
	for _, part := range candidate.Content.Parts {
		answer.Text += part.Text
	}

	md := candidate.GroundingMetadata
	if md == nil {
		return answer
	}

	normalised := &domain.GroundingMetadata{}
	for _, chunk := range md.GroundingChunks {
		var url, title string
		if chunk.Web != nil {
			url, title = chunk.Web.URI, chunk.Web.Title
		}
		normalised.Chunks = append(normalised.Chunks, domain.GroundingChunk{URL: url, Title: title})
	}
	for _, support := range md.GroundingSupports {
		s := domain.GroundingSupport{ChunkIndices: support.GroundingChunkIndices}
		if support.Segment != nil {
			s.EndIndex = support.Segment.EndIndex
			s.Segment = &domain.GroundingSegment{
				StartIndex: support.Segment.StartIndex,
				EndIndex:   support.Segment.EndIndex,
				Text:       support.Segment.Text,
			}
		}
		normalised.Supports = append(normalised.Supports, s)
	}

	if len(normalised.Chunks) > 0 || len(normalised.Supports) > 0 {
		answer.Metadata = normalised
	}
	return answer
}
