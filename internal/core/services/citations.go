package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// maxSources caps the source list extracted from grounding metadata.
// Fixed by design, not configurable.
const maxSources = 5

// markerPattern matches inline citation markers of the form [n].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// sentenceEnders terminate the sentence a citation marker belongs to.
const sentenceEnders = ".!?"

// InsertCitationMarkers splices [n] markers into text at the offsets named by
// the grounding supports. Supports are processed back-to-front so earlier
// insertions never shift the offsets of later ones; supports without a usable
// offset are skipped, and only the first support mapping to a given offset
// occupies it. Returns text unchanged when supports is empty.
func InsertCitationMarkers(text string, supports []domain.GroundingSupport) string {
	if len(supports) == 0 {
		return text
	}

	type edit struct {
		pos    int
		marker string
	}

	edits := make([]edit, 0, len(supports))
	for _, s := range supports {
		pos := supportEndOffset(s)
		if pos <= 0 || len(s.ChunkIndices) == 0 {
			continue
		}
		if pos > len(text) {
			pos = len(text)
		}

		var b strings.Builder
		for _, idx := range s.ChunkIndices {
			fmt.Fprintf(&b, "[%d]", idx+1)
		}
		edits = append(edits, edit{pos: pos, marker: b.String()})
	}

	// Descending position; ties keep support order so the first support
	// wins the dedup below.
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].pos > edits[j].pos
	})

	seen := make(map[int]bool, len(edits))
	for _, e := range edits {
		if seen[e.pos] {
			continue
		}
		seen[e.pos] = true
		text = text[:e.pos] + e.marker + text[e.pos:]
	}
	return text
}

// supportEndOffset resolves a support's insertion offset: the top-level end
// index when set, else the nested segment's end index, else zero.
func supportEndOffset(s domain.GroundingSupport) int {
	if s.EndIndex > 0 {
		return s.EndIndex
	}
	if s.Segment != nil {
		return s.Segment.EndIndex
	}
	return 0
}

// BuildCitations derives the numbered citation list from grounding chunks.
// Numbers are dense from 1 in chunk order; a URL seen twice keeps its first
// number. Returns nil for absent metadata.
func BuildCitations(md *domain.GroundingMetadata) []domain.Citation {
	if md == nil || len(md.Chunks) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(md.Chunks))
	citations := make([]domain.Citation, 0, len(md.Chunks))
	for _, chunk := range md.Chunks {
		if chunk.URL == "" || seen[chunk.URL] {
			continue
		}
		seen[chunk.URL] = true

		title := chunk.Title
		if title == "" {
			title = "Untitled"
		}
		citations = append(citations, domain.Citation{
			Number: len(citations) + 1,
			Title:  title,
			URL:    chunk.URL,
		})
	}
	return citations
}

// ExtractSources walks supports in order, resolving only each support's first
// chunk index, and emits each distinct URL once, capped at five entries.
// Dropping the remaining chunk indices of a multi-chunk support is a known
// lossy simplification kept for result-count stability.
func ExtractSources(md *domain.GroundingMetadata) []domain.SearchResultDetail {
	if md == nil || len(md.Supports) == 0 || len(md.Chunks) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var sources []domain.SearchResultDetail
	for _, s := range md.Supports {
		if len(sources) >= maxSources {
			break
		}
		if len(s.ChunkIndices) == 0 {
			continue
		}

		idx := s.ChunkIndices[0]
		if idx < 0 || idx >= len(md.Chunks) {
			continue
		}
		chunk := md.Chunks[idx]
		if chunk.URL == "" || seen[chunk.URL] {
			continue
		}
		seen[chunk.URL] = true

		title := chunk.Title
		if title == "" {
			title = "Untitled"
		}
		var snippet string
		if s.Segment != nil {
			snippet = s.Segment.Text
		}
		sources = append(sources, domain.SearchResultDetail{
			Title:   title,
			URL:     chunk.URL,
			Snippet: snippet,
		})
	}
	return sources
}

// SegmentByCitations splits annotated text into segments tagged with the
// citation numbers they contain. Offsets are byte offsets into the annotated
// text; segments tile it exactly, so concatenating their texts reproduces the
// input and stripping [n] markers from that reproduces the pre-annotation
// text. A marker's segment extends to the end of its sentence, and adjacent
// cited segments merge into one per citation cluster. The second return value
// lists every marker number in order of appearance.
func SegmentByCitations(annotated string) ([]domain.TextSegment, []int) {
	matches := markerPattern.FindAllStringSubmatchIndex(annotated, -1)
	if len(matches) == 0 {
		if annotated == "" {
			return nil, nil
		}
		return []domain.TextSegment{{
			Text:       annotated,
			StartIndex: 0,
			EndIndex:   len(annotated),
		}}, nil
	}

	var (
		segments        []domain.TextSegment
		citationNumbers []int
	)
	cursor := 0

	for i, m := range matches {
		start, end := m[0], m[1]
		number := parseMarkerNumber(annotated[m[2]:m[3]])
		citationNumbers = append(citationNumbers, number)

		segStart := cursor
		if start > cursor {
			plain := annotated[cursor:start]
			if strings.TrimSpace(plain) != "" {
				segments = append(segments, domain.TextSegment{
					Text:       plain,
					StartIndex: cursor,
					EndIndex:   start,
				})
				segStart = start
			}
			// Blank inter-marker text stays attached to the citation
			// segment so the tiling has no gaps.
		}

		segEnd := sentenceEnd(annotated, end)
		if i+1 < len(matches) && matches[i+1][0] < segEnd {
			segEnd = matches[i+1][0]
		}

		if merged := mergeIntoPrevious(segments, annotated, segStart, segEnd, number); merged {
			cursor = segEnd
			continue
		}

		segments = append(segments, domain.TextSegment{
			Text:        annotated[segStart:segEnd],
			CitationIDs: []int{number},
			StartIndex:  segStart,
			EndIndex:    segEnd,
		})
		cursor = segEnd
	}

	if cursor < len(annotated) {
		tail := annotated[cursor:]
		if strings.TrimSpace(tail) != "" {
			segments = append(segments, domain.TextSegment{
				Text:       tail,
				StartIndex: cursor,
				EndIndex:   len(annotated),
			})
		} else if n := len(segments); n > 0 {
			segments[n-1].Text += tail
			segments[n-1].EndIndex = len(annotated)
		}
	}

	return segments, citationNumbers
}

// mergeIntoPrevious folds the span [start,end) into the last segment when it
// is positionally adjacent and already cited, producing one segment per
// citation cluster. Reports whether a merge happened.
func mergeIntoPrevious(segments []domain.TextSegment, annotated string, start, end, number int) bool {
	n := len(segments)
	if n == 0 {
		return false
	}
	last := &segments[n-1]
	if len(last.CitationIDs) == 0 || last.EndIndex != start {
		return false
	}

	last.Text += annotated[start:end]
	last.EndIndex = end
	for _, id := range last.CitationIDs {
		if id == number {
			return true
		}
	}
	last.CitationIDs = append(last.CitationIDs, number)
	return true
}

// sentenceEnd returns the index just past the first sentence terminator at or
// after from, or the end of the text when none follows.
func sentenceEnd(s string, from int) int {
	if idx := strings.IndexAny(s[from:], sentenceEnders); idx >= 0 {
		return from + idx + 1
	}
	return len(s)
}

// parseMarkerNumber parses the digits inside a matched marker. The pattern
// guarantees digits, so errors cannot occur for real matches.
func parseMarkerNumber(digits string) int {
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}

// StripCitationMarkers removes all [n] markers from annotated text.
func StripCitationMarkers(annotated string) string {
	return markerPattern.ReplaceAllString(annotated, "")
}

// DedupeAnnotatedSentences collapses repeated sentences that differ only by
// their trailing citation markers, preferring the variant that carries
// markers. Some server-side responses annotate a sentence and then repeat it
// bare; this pass keeps one copy.
func DedupeAnnotatedSentences(text string) string {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return text
	}

	type kept struct {
		index   int
		markers bool
	}
	byKey := make(map[string]kept, len(sentences))
	out := make([]string, 0, len(sentences))

	for _, sentence := range sentences {
		key := strings.TrimSpace(StripCitationMarkers(sentence))
		if key == "" {
			out = append(out, sentence)
			continue
		}
		hasMarkers := markerPattern.MatchString(sentence)

		prev, ok := byKey[key]
		if !ok {
			byKey[key] = kept{index: len(out), markers: hasMarkers}
			out = append(out, sentence)
			continue
		}
		if hasMarkers && !prev.markers {
			// Prefer the annotated variant, keeping the original position.
			out[prev.index] = sentence
			byKey[key] = kept{index: prev.index, markers: true}
		}
	}
	return strings.Join(out, "")
}

// splitSentences splits text after each sentence terminator, keeping the
// terminator and any trailing citation markers and whitespace with the
// sentence they close.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		if !strings.ContainsRune(sentenceEnders, rune(text[i])) {
			i++
			continue
		}
		i++
		// Trailing markers belong to the sentence just closed.
		for {
			loc := markerPattern.FindStringIndex(text[i:])
			if loc == nil || loc[0] != 0 {
				break
			}
			i += loc[1]
		}
		for i < len(text) && (text[i] == ' ' || text[i] == '\n' || text[i] == '\t') {
			i++
		}
		sentences = append(sentences, text[start:i])
		start = i
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// Reconcile turns a normalised grounded answer into an annotated summary and
// citation list. Malformed or missing metadata degrades to the bare text with
// no citations; it is never an error.
func Reconcile(answer *domain.GroundedAnswer) (string, []domain.Citation) {
	if answer == nil {
		return "", nil
	}
	if answer.Metadata == nil {
		return DedupeAnnotatedSentences(answer.Text), nil
	}
	annotated := InsertCitationMarkers(answer.Text, answer.Metadata.Supports)
	annotated = DedupeAnnotatedSentences(annotated)
	return annotated, BuildCitations(answer.Metadata)
}
