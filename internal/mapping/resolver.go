package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"refalign/internal/corpus"
)

// ResolutionKind classifies why a group could not be resolved to a
// reference document.
type ResolutionKind int

const (
	// NoMapping: the correspondence table has no entry for the group.
	NoMapping ResolutionKind = iota
	// NoPartition: neither partition table matched the group's parent.
	NoPartition
	// DocumentMissing: the mapped document is absent from the partition
	// folder, even after a case-insensitive retry.
	DocumentMissing
)

func (k ResolutionKind) String() string {
	switch k {
	case NoMapping:
		return "no correspondence entry"
	case NoPartition:
		return "partition undetermined"
	case DocumentMissing:
		return "reference document missing"
	default:
		return "unknown"
	}
}

// ResolutionError is a typed resolution failure. Callers skip the group
// and continue the batch; resolution failures never abort a run.
type ResolutionError struct {
	Kind     ResolutionKind
	GroupKey string
	Detail   string
}

func (e *ResolutionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("resolving %s: %s", e.GroupKey, e.Kind)
	}
	return fmt.Sprintf("resolving %s: %s (%s)", e.GroupKey, e.Kind, e.Detail)
}

// Resolver maps segment groups to reference document paths under a
// references root directory.
type Resolver struct {
	table    *Table
	refsRoot string
}

// NewResolver creates a Resolver over the given correspondence table and
// references root.
func NewResolver(table *Table, refsRoot string) *Resolver {
	return &Resolver{table: table, refsRoot: refsRoot}
}

// Resolve returns the path of the reference document for the group, or a
// *ResolutionError. Resolution is deterministic and case-insensitive at
// every step: table lookup, partition match, and filename retry.
func (r *Resolver) Resolve(group corpus.Group) (string, error) {
	docName, ok := r.table.Document(group.Name)
	if !ok {
		return "", &ResolutionError{Kind: NoMapping, GroupKey: group.Key}
	}

	partFolder, ok := r.table.PartitionFolder(group.Partition)
	if !ok {
		return "", &ResolutionError{
			Kind:     NoPartition,
			GroupKey: group.Key,
			Detail:   fmt.Sprintf("parent %q", group.Partition),
		}
	}

	dir := filepath.Join(r.refsRoot, partFolder)
	path := filepath.Join(dir, docName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// Exact name absent: retry case-insensitively over the partition folder.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &ResolutionError{
			Kind:     DocumentMissing,
			GroupKey: group.Key,
			Detail:   fmt.Sprintf("partition folder %s unreadable: %v", partFolder, err),
		}
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), docName) {
			return filepath.Join(dir, e.Name()), nil
		}
	}

	return "", &ResolutionError{
		Kind:     DocumentMissing,
		GroupKey: group.Key,
		Detail:   fmt.Sprintf("%s not in %s", docName, partFolder),
	}
}
