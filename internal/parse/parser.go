// Package parse extracts (segment id, matched text) pairs from oracle
// responses. The response format is a loose contract: the request asks
// for CSV rows, but the oracle frequently emits the segment delimiters
// from the request verbatim, so two grammars are supported and tried in
// order. The first grammar that yields any matches wins.
package parse

import "regexp"

// Match is one accepted alignment: the segment the oracle matched and
// the reference excerpt it selected.
type Match struct {
	SegmentID string
	Text      string
}

// Grammar is one parsing strategy. Extract returns the matches it found,
// or an empty slice when the grammar does not apply to the response.
type Grammar interface {
	Name() string
	Extract(response string) []Match
}

// Parser runs an ordered list of grammar strategies over a response.
// New grammars are appended without altering existing ones.
type Parser struct {
	grammars []Grammar
}

// NewParser creates a Parser with the default grammar order: block
// grammar first, CSV line grammar as fallback.
func NewParser() *Parser {
	return &Parser{grammars: []Grammar{blockGrammar{}, lineGrammar{}}}
}

// headerRe strips a leading CSV header row the oracle sometimes echoes.
var headerRe = regexp.MustCompile(`(?im)^\s*file_name\s*,\s*matched_text\s*$`)

// Parse extracts matches from the raw response, in the order they were
// encountered. An empty result is a valid outcome, not an error: it means
// the oracle reported no qualifying matches (or replied with something
// neither grammar recognizes).
func (p *Parser) Parse(response string) []Match {
	cleaned := headerRe.ReplaceAllString(response, "")
	for _, g := range p.grammars {
		if matches := g.Extract(cleaned); len(matches) > 0 {
			return matches
		}
	}
	return nil
}
