// Package output persists accepted matches as per-segment artifacts
// under an output root that mirrors the input group hierarchy. The
// artifacts double as the pipeline's resumability checkpoint: progress is
// always recomputed from what this package leaves behind.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"refalign/internal/corpus"
	"refalign/internal/parse"
)

// defaultMaxPath keeps artifact paths under the common OS path bound
// with headroom for path separators added by callers.
const defaultMaxPath = 240

// Writer writes match artifacts idempotently: same matches in, same file
// set out, regardless of what was there before.
type Writer struct {
	root    string
	maxPath int
	logger  *slog.Logger
}

// NewWriter creates a Writer rooted at the output directory.
func NewWriter(root string) *Writer {
	return &Writer{
		root:    root,
		maxPath: defaultMaxPath,
		logger:  slog.Default(),
	}
}

// GroupDir returns the output directory for a group key.
func (w *Writer) GroupDir(groupKey string) string {
	return filepath.Join(w.root, filepath.FromSlash(groupKey))
}

// Write persists each match verbatim under the group's output directory,
// overwriting prior artifacts of the same name. Per-file failures are
// logged and skipped; the returned count is the number of artifacts
// actually written.
func (w *Writer) Write(groupKey string, matches []parse.Match) (int, error) {
	dir := w.GroupDir(groupKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory for %s: %w", groupKey, err)
	}

	written := 0
	for _, m := range matches {
		name := w.artifactName(dir, m.SegmentID)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(m.Text), 0o644); err != nil {
			w.logger.Warn("skipping artifact", "group", groupKey, "segment", m.SegmentID, "error", err)
			continue
		}
		written++
	}
	return written, nil
}

// Purge deletes all prior artifacts in the group's output directory and
// returns how many were removed. Reprocessing a partially completed
// group purges first so stale and fresh results never mix under
// non-deterministic re-alignment.
func (w *Writer) Purge(groupKey string) (int, error) {
	dir := w.GroupDir(groupKey)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading output directory for %s: %w", groupKey, err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), corpus.SegmentExt) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			w.logger.Warn("could not remove stale artifact", "group", groupKey, "file", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// artifactName sanitizes a segment id into a filesystem-safe artifact
// filename, appending the extension when absent and truncating against
// the path-length bound while preserving the extension.
func (w *Writer) artifactName(dir, segmentID string) string {
	name := SanitizeName(segmentID)
	if !strings.EqualFold(filepath.Ext(name), corpus.SegmentExt) {
		name += corpus.SegmentExt
	}

	over := len(dir) + 1 + len(name) - w.maxPath
	if over > 0 {
		stem := strings.TrimSuffix(name, corpus.SegmentExt)
		keep := len(stem) - over
		if keep < 1 {
			keep = 1
		}
		name = truncateRunes(stem, keep) + corpus.SegmentExt
	}
	return name
}

// SanitizeName replaces path-forbidden characters with an underscore.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
