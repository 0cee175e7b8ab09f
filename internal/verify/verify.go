// Package verify provides an optional deterministic acceptance check on
// oracle matches. The acceptance floor itself is delegated to the
// oracle's judgment; this checker exists for operators who want a local
// backstop, using normalized Levenshtein similarity over runes. It is
// disabled by default.
package verify

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Checker accepts or rejects matches by character-level similarity.
type Checker struct {
	threshold float64
}

// New creates a Checker. A threshold <= 0 disables checking: every match
// is accepted.
func New(threshold float64) *Checker {
	return &Checker{threshold: threshold}
}

// Enabled reports whether the checker filters anything at all.
func (c *Checker) Enabled() bool {
	return c.threshold > 0
}

// Accept reports whether the matched reference excerpt is similar enough
// to the segment text.
func (c *Checker) Accept(segmentText, matchedText string) bool {
	if !c.Enabled() {
		return true
	}
	return Similarity(segmentText, matchedText) >= c.threshold
}

// Similarity returns 1 - editDistance/maxRuneLength, in [0, 1]. Two
// empty strings are identical.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
