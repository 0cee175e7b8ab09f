package parse

import "strings"

// maxSegmentID bounds identifier length to something that can still
// become a filename; anything longer is noise, not a segment id.
const maxSegmentID = 255

// lineGrammar parses plain CSV rows, one "id,text" pair per line. It is
// only consulted when the block grammar yields nothing. Lines without a
// separating comma, with an over-long identifier, or repeating the
// header tokens are discarded.
type lineGrammar struct{}

func (lineGrammar) Name() string { return "line" }

func (lineGrammar) Extract(response string) []Match {
	var matches []Match
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.Index(line, ",")
		if idx <= 0 {
			continue
		}
		id := strings.TrimSpace(line[:idx])
		text := strings.TrimSpace(line[idx+1:])

		if id == "" || text == "" {
			continue
		}
		if len(id) > maxSegmentID {
			continue
		}
		if strings.EqualFold(id, "file_name") || strings.EqualFold(text, "matched_text") {
			continue
		}

		matches = append(matches, Match{SegmentID: id, Text: text})
	}
	return matches
}
