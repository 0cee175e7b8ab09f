package parse

import (
	"regexp"
	"strings"
)

// blockGrammar extracts repeated "--- <id> ---,<text>" sequences, where
// the text runs until the next block marker or the end of the response.
// The text may span lines and contain commas and dashes. This mirrors
// the delimiters the request builder emits; the two must change together.
type blockGrammar struct{}

// markerRe matches one block marker plus its separating comma. Go's RE2
// engine has no lookahead, so instead of bounding the text in the
// pattern, Extract slices the response between consecutive marker
// positions.
var markerRe = regexp.MustCompile(`---\s*(.+?)\s*---\s*,\s*`)

func (blockGrammar) Name() string { return "block" }

func (blockGrammar) Extract(response string) []Match {
	locs := markerRe.FindAllStringSubmatchIndex(response, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))
	for i, loc := range locs {
		id := strings.TrimSpace(response[loc[2]:loc[3]])

		end := len(response)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(response[loc[1]:end])

		if id == "" || text == "" {
			continue
		}
		matches = append(matches, Match{SegmentID: id, Text: text})
	}
	return matches
}
