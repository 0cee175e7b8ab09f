package progress

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		expected, completed int
		want                Status
	}{
		{5, 0, NotStarted},
		{5, 3, Partial},
		{5, 5, Complete},
		{5, 6, Overshoot},
	}
	for _, tt := range tests {
		r := Record{Expected: tt.expected, Completed: tt.completed}
		if got := r.Status(); got != tt.want {
			t.Errorf("Status(%d/%d) = %v, want %v", tt.completed, tt.expected, got, tt.want)
		}
	}
}

func TestScan(t *testing.T) {
	segments := t.TempDir()
	outputs := t.TempDir()

	writeFiles(t, filepath.Join(segments, "jan", "standup"), "001.txt", "002.txt", "003.txt")
	writeFiles(t, filepath.Join(segments, "jan", "retro"), "001.txt")
	writeFiles(t, filepath.Join(outputs, "jan", "standup"), "001.txt", "002.txt")
	// Orphan output group with no input counterpart.
	writeFiles(t, filepath.Join(outputs, "feb", "gone"), "001.txt")

	tracker := NewTracker(segments, outputs)
	records, err := tracker.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Sorted by key: feb/gone, jan/retro, jan/standup.
	if records[0].GroupKey != "feb/gone" || records[1].GroupKey != "jan/retro" || records[2].GroupKey != "jan/standup" {
		t.Fatalf("unexpected order: %q, %q, %q", records[0].GroupKey, records[1].GroupKey, records[2].GroupKey)
	}

	standup := records[2]
	if standup.Expected != 3 || standup.Completed != 2 || standup.Status() != Partial {
		t.Errorf("standup = %+v", standup)
	}
	retro := records[1]
	if retro.Expected != 1 || retro.Completed != 0 || retro.Status() != NotStarted {
		t.Errorf("retro = %+v", retro)
	}
	orphan := records[0]
	if orphan.Expected != 0 || orphan.Completed != 1 || orphan.Status() != Overshoot {
		t.Errorf("orphan = %+v", orphan)
	}
}

func TestScanMissingOutputRoot(t *testing.T) {
	segments := t.TempDir()
	writeFiles(t, filepath.Join(segments, "jan", "standup"), "001.txt")

	tracker := NewTracker(segments, filepath.Join(t.TempDir(), "missing"))
	records, err := tracker.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 1 || records[0].Status() != NotStarted {
		t.Errorf("records = %+v", records)
	}
}

func TestGroup(t *testing.T) {
	segments := t.TempDir()
	outputs := t.TempDir()
	writeFiles(t, filepath.Join(segments, "jan", "standup"), "001.txt", "002.txt")
	writeFiles(t, filepath.Join(outputs, "jan", "standup"), "001.txt")

	tracker := NewTracker(segments, outputs)
	rec, err := tracker.Group("jan/standup")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if rec.Expected != 2 || rec.Completed != 1 {
		t.Errorf("rec = %+v", rec)
	}

	if _, err := tracker.Group("malformed"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestWorkSet(t *testing.T) {
	records := []Record{
		{GroupKey: "a/done", Expected: 2, Completed: 2},
		{GroupKey: "a/partial", Expected: 2, Completed: 1},
		{GroupKey: "a/fresh", Expected: 2, Completed: 0},
		{GroupKey: "a/orphan", Expected: 0, Completed: 1},
	}
	work := WorkSet(records)
	if len(work) != 2 {
		t.Fatalf("expected 2 work records, got %d", len(work))
	}
	if work[0].GroupKey != "a/partial" || work[1].GroupKey != "a/fresh" {
		t.Errorf("work = %+v", work)
	}
}
