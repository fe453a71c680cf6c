package domain

// Citation is one numbered source reference in an annotated answer.
// Numbers are dense starting at 1 and assigned in source order; the same URL
// never maps to two different numbers within one answer.
type Citation struct {
	// Number is the 1-based citation number matching the inline [n] markers.
	Number int `json:"number"`
	// Title is the source page title.
	Title string `json:"title"`
	// URL is the source page URL.
	URL string `json:"url"`
}

// GroundingChunk is one retrieved web source, referenced by index from
// grounding supports.
type GroundingChunk struct {
	// URL is the source URL.
	URL string
	// Title is the source title, possibly empty.
	Title string
}

// GroundingSegment describes the span of answer text a support refers to.
// Offsets are byte offsets into the original, pre-annotation answer text.
type GroundingSegment struct {
	StartIndex int
	EndIndex   int
	// Text is the span text, used as the citation snippet.
	Text string
}

// GroundingSupport links a span of answer text to the chunk indices that
// justify it.
type GroundingSupport struct {
	// EndIndex is the end offset of the supported span in the original
	// answer text. Zero means unset; the nested segment's end offset is
	// used as a fallback.
	EndIndex int
	// Segment optionally carries the span's offsets and text.
	Segment *GroundingSegment
	// ChunkIndices reference positions in GroundingMetadata.Chunks.
	ChunkIndices []int
}

// GroundingMetadata is the normalised grounding structure attached to a
// generated answer, regardless of which transport path produced it.
type GroundingMetadata struct {
	Chunks   []GroundingChunk
	Supports []GroundingSupport
}

// GroundedAnswer is the normalised result of a grounded generation request.
// Both transport paths (SDK and project-scoped assistant) reduce to this
// shape before any citation logic runs.
type GroundedAnswer struct {
	// Text is the raw answer text without citation markers.
	Text string
	// Metadata is the grounding structure; nil when the model returned no
	// grounding, which degrades to a citation-free answer.
	Metadata *GroundingMetadata
}

// TextSegment is a span of annotated answer text tagged with the citation
// numbers it contains. Offsets are byte offsets into the annotated text.
// Segments tile the annotated text left to right with no gaps or overlaps.
type TextSegment struct {
	Text        string `json:"text"`
	CitationIDs []int  `json:"citation_ids"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
}

// SearchResultDetail is one deduplicated source extracted from grounding
// metadata, suitable for display or follow-up scraping.
type SearchResultDetail struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
