// Package mapping resolves which reference document a segment group
// belongs to, using an externally configured correspondence table.
package mapping

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
)

// Table is the static correspondence configuration: group folder names
// mapped to reference document filenames, plus two partition lookup
// tables. All keys are matched case-insensitively.
type Table struct {
	groups     map[string]string // case-folded group leaf -> document filename
	partitions []substringEntry  // canonical partition names, checked first
	aliases    []substringEntry  // generic abbreviation fallback
}

type substringEntry struct {
	key    string // case-folded
	folder string
}

// tableFile mirrors the on-disk TOML layout.
type tableFile struct {
	Groups           map[string]string `toml:"groups"`
	Partitions       map[string]string `toml:"partitions"`
	PartitionAliases map[string]string `toml:"partition_aliases"`
}

var keyFold = cases.Fold()

// LoadTable reads and validates the correspondence table at path.
// Duplicate keys that differ only by case are a validation error: every
// group key must map to exactly one entry.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading correspondence table: %w", err)
	}

	var file tableFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing correspondence table %s: %w", path, err)
	}
	return NewTable(file.Groups, file.Partitions, file.PartitionAliases)
}

// NewTable builds a validated Table from raw maps.
func NewTable(groups, partitions, aliases map[string]string) (*Table, error) {
	t := &Table{groups: make(map[string]string, len(groups))}

	for key, doc := range groups {
		folded := keyFold.String(key)
		if prev, ok := t.groups[folded]; ok {
			return nil, fmt.Errorf("correspondence table: group key %q collides case-insensitively (maps to both %q and %q)", key, prev, doc)
		}
		if doc == "" {
			return nil, fmt.Errorf("correspondence table: group key %q maps to an empty document name", key)
		}
		t.groups[folded] = doc
	}

	var err error
	if t.partitions, err = foldEntries("partitions", partitions); err != nil {
		return nil, err
	}
	if t.aliases, err = foldEntries("partition_aliases", aliases); err != nil {
		return nil, err
	}
	return t, nil
}

func foldEntries(section string, m map[string]string) ([]substringEntry, error) {
	entries := make([]substringEntry, 0, len(m))
	seen := make(map[string]bool, len(m))
	for key, dir := range m {
		folded := keyFold.String(key)
		if seen[folded] {
			return nil, fmt.Errorf("correspondence table: [%s] key %q collides case-insensitively", section, key)
		}
		seen[folded] = true
		entries = append(entries, substringEntry{key: folded, folder: dir})
	}
	// Longest key first so "november" wins over "nov" when both match.
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})
	return entries, nil
}

// Document returns the reference document filename mapped to the group
// leaf name, matched case-insensitively.
func (t *Table) Document(groupName string) (string, bool) {
	doc, ok := t.groups[keyFold.String(groupName)]
	return doc, ok
}

// PartitionFolder determines the reference partition folder for a segment
// partition name: first by substring match against the canonical
// partition table, then against the generic alias table.
func (t *Table) PartitionFolder(partitionName string) (string, bool) {
	name := keyFold.String(partitionName)
	for _, e := range t.partitions {
		if strings.Contains(name, e.key) {
			return e.folder, true
		}
	}
	for _, e := range t.aliases {
		if strings.Contains(name, e.key) {
			return e.folder, true
		}
	}
	return "", false
}

// Groups returns the configured group keys in their original case-folded
// form, sorted. Used by config validation to report unreferenced entries.
func (t *Table) Groups() []string {
	keys := make([]string, 0, len(t.groups))
	for k := range t.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultAliases is the generic month-abbreviation fallback table used by
// the embedded sample configuration.
func DefaultAliases(suffix string) map[string]string {
	months := []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	aliases := make(map[string]string, len(months))
	for _, m := range months {
		aliases[m[:3]] = m + suffix
	}
	return aliases
}
