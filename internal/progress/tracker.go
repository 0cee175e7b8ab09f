// Package progress derives per-group completion state by counting output
// artifacts against discovered input segments. Nothing is persisted:
// state is recomputed from the filesystem on every run, so an
// interrupted batch resumes correctly from whatever artifacts survived.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"refalign/internal/corpus"
)

// Status classifies a group's completion state.
type Status int

const (
	NotStarted Status = iota
	Partial
	Complete
	Overshoot
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	case Overshoot:
		return "overshoot"
	default:
		return "unknown"
	}
}

// Record is the derived completion state for one group.
type Record struct {
	GroupKey  string
	Partition string
	Group     string
	Expected  int
	Completed int
}

// Status derives the completion status from the two counts.
func (r Record) Status() Status {
	switch {
	case r.Completed == 0 && r.Expected > 0:
		return NotStarted
	case r.Completed < r.Expected:
		return Partial
	case r.Completed == r.Expected:
		return Complete
	default:
		return Overshoot
	}
}

// Tracker computes progress records from the segments and output roots.
type Tracker struct {
	segmentsRoot string
	outputRoot   string
}

// NewTracker creates a Tracker over the given roots.
func NewTracker(segmentsRoot, outputRoot string) *Tracker {
	return &Tracker{segmentsRoot: segmentsRoot, outputRoot: outputRoot}
}

// Scan enumerates both trees and returns one record per group found on
// either side, sorted by group key. The two trees are walked
// concurrently; they are independent directory hierarchies.
func (t *Tracker) Scan() ([]Record, error) {
	var expected, completed map[string]int

	var g errgroup.Group
	g.Go(func() (err error) {
		expected, err = countTree(t.segmentsRoot)
		return err
	})
	g.Go(func() (err error) {
		completed, err = countTree(t.outputRoot)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keys := make(map[string]bool, len(expected)+len(completed))
	for k := range expected {
		keys[k] = true
	}
	for k := range completed {
		keys[k] = true
	}

	records := make([]Record, 0, len(keys))
	for key := range keys {
		partition, group, _ := strings.Cut(key, "/")
		records = append(records, Record{
			GroupKey:  key,
			Partition: partition,
			Group:     group,
			Expected:  expected[key],
			Completed: completed[key],
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].GroupKey < records[j].GroupKey })
	return records, nil
}

// Group recomputes the record for a single group key.
func (t *Tracker) Group(groupKey string) (Record, error) {
	partition, group, ok := strings.Cut(groupKey, "/")
	if !ok {
		return Record{}, fmt.Errorf("malformed group key %q", groupKey)
	}
	rel := filepath.FromSlash(groupKey)
	expected, err := countDir(filepath.Join(t.segmentsRoot, rel))
	if err != nil {
		return Record{}, err
	}
	completed, err := countDir(filepath.Join(t.outputRoot, rel))
	if err != nil {
		return Record{}, err
	}
	return Record{
		GroupKey:  groupKey,
		Partition: partition,
		Group:     group,
		Expected:  expected,
		Completed: completed,
	}, nil
}

// WorkSet filters records down to the groups eligible for (re)processing:
// everything not yet Complete that has at least one expected segment. A
// full rerun over the work set reproduces the same eventual file set as
// an uninterrupted single run.
func WorkSet(records []Record) []Record {
	var work []Record
	for _, r := range records {
		if r.Expected > 0 && r.Status() != Complete {
			work = append(work, r)
		}
	}
	return work
}

// countTree counts segment artifacts per "partition/group" key under a
// two-level root. A missing root is an empty tree, not an error: the
// output root does not exist before the first run.
func countTree(root string) (map[string]int, error) {
	counts := make(map[string]int)

	partitions, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return counts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	for _, p := range partitions {
		if !p.IsDir() {
			continue
		}
		groups, err := os.ReadDir(filepath.Join(root, p.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading partition %s: %w", p.Name(), err)
		}
		for _, g := range groups {
			if !g.IsDir() {
				continue
			}
			n, err := countDir(filepath.Join(root, p.Name(), g.Name()))
			if err != nil {
				return nil, err
			}
			counts[corpus.Key(p.Name(), g.Name())] = n
		}
	}
	return counts, nil
}

func countDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), corpus.SegmentExt) {
			n++
		}
	}
	return n, nil
}
