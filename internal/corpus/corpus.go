// Package corpus discovers segment groups from the two-level input
// hierarchy: partition folders containing group folders containing
// per-segment text files.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SegmentExt is the file extension of segment artifacts, on both the
// input and output side.
const SegmentExt = ".txt"

// Segment is one short transcript fragment belonging to a group. The ID
// is the file stem, unique within the group.
type Segment struct {
	ID   string
	Path string
}

// Text reads the segment's raw transcript text from disk.
func (s Segment) Text() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading segment %s: %w", s.ID, err)
	}
	return string(data), nil
}

// Group is a folder of consecutive segments believed to originate from
// one recording. Key is "partition/name".
type Group struct {
	Key       string
	Partition string
	Name      string
	Dir       string
	Segments  []Segment
}

// Key builds a group key from its partition and group folder names.
func Key(partition, name string) string {
	return partition + "/" + name
}

// DiscoverGroups walks root and returns all segment groups, sorted by
// key. Segments within a group are sorted by ID. Groups without any
// segment files are omitted.
func DiscoverGroups(root string) ([]Group, error) {
	partitions, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading segments root: %w", err)
	}

	var groups []Group
	for _, p := range partitions {
		if !p.IsDir() {
			continue
		}
		partDir := filepath.Join(root, p.Name())
		entries, err := os.ReadDir(partDir)
		if err != nil {
			return nil, fmt.Errorf("reading partition %s: %w", p.Name(), err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(partDir, e.Name())
			segments, err := readSegments(dir)
			if err != nil {
				return nil, err
			}
			if len(segments) == 0 {
				continue
			}
			groups = append(groups, Group{
				Key:       Key(p.Name(), e.Name()),
				Partition: p.Name(),
				Name:      e.Name(),
				Dir:       dir,
				Segments:  segments,
			})
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

func readSegments(dir string) ([]Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading group %s: %w", dir, err)
	}

	var segments []Segment
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), SegmentExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		segments = append(segments, Segment{
			ID:   id,
			Path: filepath.Join(dir, e.Name()),
		})
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].ID < segments[j].ID })
	return segments, nil
}
