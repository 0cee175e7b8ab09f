// Package prompt composes the alignment request sent to the oracle.
package prompt

import (
	"fmt"
	"strings"
)

// Segment is one transcript fragment included in a request.
type Segment struct {
	ID   string
	Text string
}

// similarityFloor is the acceptance rule stated in the request: the
// oracle must select only the longest reference substring with at least
// this character-level similarity, and skip the segment otherwise.
const similarityFloor = 60

// header defines the task. It pins the match to character-level fuzzy
// alignment and forbids invention, translation, and paraphrase.
const header = `You are a strict text-matcher. Do not guess or compensate.

Goal:
Match each small segment to the exact matching text in the large transcript.
Matching is character-level, not semantic: do not translate, do not paraphrase, do not invent text.
For each segment, select only the longest substring of the transcript with at least %d%% character similarity.
If a segment does NOT clearly reach that floor, skip it completely; do not guess.

Output Format:
Return ONLY CSV:
file_name, matched_text

Rules:
- No explanations.
- No commentary.
- Only CSV rows with strong matches.

Segments:
`

// Builder assembles alignment requests. The emitted segment delimiters
// and the CSV response contract form a protocol with internal/parse; any
// change here must be mirrored there.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces a single request embedding the instruction header, one
// delimited block per segment, and the full reference text under a
// labeled section.
func (b *Builder) Build(segments []Segment, reference string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, similarityFloor)

	for _, seg := range segments {
		fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", seg.ID, seg.Text)
	}

	sb.WriteString("Full Transcript:\n")
	sb.WriteString(reference)
	sb.WriteString("\n")
	return sb.String()
}
