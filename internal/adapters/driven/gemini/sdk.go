package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// sdkClient initialises the genai SDK client once and reuses it.
func (c *Client) sdkClient(ctx context.Context) (*genai.Client, error) {
	c.sdkOnce.Do(func() {
		c.sdk, c.sdkErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if c.sdkErr != nil {
		return nil, fmt.Errorf("creating genai client: %w", c.sdkErr)
	}
	return c.sdk, nil
}

// sdkGenerate runs one generation through the genai SDK, optionally with the
// Google Search grounding tool attached.
func (c *Client) sdkGenerate(ctx context.Context, prompt string, grounded bool) (*domain.GroundedAnswer, error) {
	client, err := c.sdkClient(ctx)
	if err != nil {
		return nil, err
	}

	var config *genai.GenerateContentConfig
	if grounded {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("sdk generate: %w", err)
	}

	answer := normaliseSDKResponse(resp)
	logAnswer("sdk", answer)
	return answer, nil
}

// normaliseSDKResponse flattens the SDK response into the internal answer
// shape. Missing candidates or metadata degrade to an empty/citation-free
// answer, never an error.
func normaliseSDKResponse(resp *genai.GenerateContentResponse) *domain.GroundedAnswer {
	if resp == nil {
		return &domain.GroundedAnswer{}
	}

	answer := &domain.GroundedAnswer{Text: resp.Text()}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return answer
	}

	md := resp.Candidates[0].GroundingMetadata
	normalised := &domain.GroundingMetadata{}

	for _, chunk := range md.GroundingChunks {
		if chunk == nil {
			normalised.Chunks = append(normalised.Chunks, domain.GroundingChunk{})
			continue
		}
		var url, title string
		switch {
		case chunk.Web != nil:
			url, title = chunk.Web.URI, chunk.Web.Title
		case chunk.RetrievedContext != nil:
			url, title = chunk.RetrievedContext.URI, chunk.RetrievedContext.Title
		}
		normalised.Chunks = append(normalised.Chunks, domain.GroundingChunk{URL: url, Title: title})
	}

	for _, support := range md.GroundingSupports {
		if support == nil {
			continue
		}
		s := domain.GroundingSupport{
			ChunkIndices: make([]int, 0, len(support.GroundingChunkIndices)),
		}
		for _, idx := range support.GroundingChunkIndices {
			s.ChunkIndices = append(s.ChunkIndices, int(idx))
		}
		if support.Segment != nil {
			s.EndIndex = int(support.Segment.EndIndex)
			s.Segment = &domain.GroundingSegment{
				StartIndex: int(support.Segment.StartIndex),
				EndIndex:   int(support.Segment.EndIndex),
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
