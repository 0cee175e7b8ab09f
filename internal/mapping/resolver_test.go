package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"refalign/internal/corpus"
)

func testGroup() corpus.Group {
	return corpus.Group{
		Key:       "jan-batch/standup",
		Partition: "jan-batch",
		Name:      "standup",
	}
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		map[string]string{"standup": "Standup.docx"},
		nil,
		map[string]string{"jan": "january"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestResolve(t *testing.T) {
	refs := t.TempDir()
	dir := filepath.Join(refs, "january")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	docPath := filepath.Join(dir, "Standup.docx")
	if err := os.WriteFile(docPath, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testTable(t), refs)
	path, err := r.Resolve(testGroup())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != docPath {
		t.Errorf("path = %q, want %q", path, docPath)
	}
}

func TestResolveCaseInsensitiveFilename(t *testing.T) {
	refs := t.TempDir()
	dir := filepath.Join(refs, "january")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// On-disk casing differs from the mapped name.
	docPath := filepath.Join(dir, "STANDUP.DOCX")
	if err := os.WriteFile(docPath, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testTable(t), refs)
	path, err := r.Resolve(testGroup())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(path) != "STANDUP.DOCX" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveNoMapping(t *testing.T) {
	r := NewResolver(testTable(t), t.TempDir())
	g := testGroup()
	g.Name = "unmapped"

	_, err := r.Resolve(g)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != NoMapping {
		t.Fatalf("expected NoMapping, got %v", err)
	}
}

func TestResolveNoPartition(t *testing.T) {
	r := NewResolver(testTable(t), t.TempDir())
	g := testGroup()
	g.Partition = "unrelated-folder"

	_, err := r.Resolve(g)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != NoPartition {
		t.Fatalf("expected NoPartition, got %v", err)
	}
}

func TestResolveDocumentMissing(t *testing.T) {
	refs := t.TempDir()
	if err := os.MkdirAll(filepath.Join(refs, "january"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testTable(t), refs)
	_, err := r.Resolve(testGroup())
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != DocumentMissing {
		t.Fatalf("expected DocumentMissing, got %v", err)
	}
}
