package parse

import "testing"

func TestParseBlockResponse(t *testing.T) {
	response := `--- seg-001 ---, The quick brown fox
jumps over the lazy dog.

--- seg-002 ---,Second match, with a comma - and dashes.`

	p := NewParser()
	matches := p.Parse(response)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].SegmentID != "seg-001" {
		t.Errorf("first id = %q", matches[0].SegmentID)
	}
	want := "The quick brown fox\njumps over the lazy dog."
	if matches[0].Text != want {
		t.Errorf("first text = %q, want %q", matches[0].Text, want)
	}
	if matches[1].SegmentID != "seg-002" {
		t.Errorf("second id = %q", matches[1].SegmentID)
	}
	if matches[1].Text != "Second match, with a comma - and dashes." {
		t.Errorf("second text = %q", matches[1].Text)
	}
}

func TestParseBlockSkipsEmptyText(t *testing.T) {
	response := "--- seg-001 ---,  \n--- seg-002 ---, real text"

	matches := NewParser().Parse(response)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].SegmentID != "seg-002" {
		t.Errorf("id = %q", matches[0].SegmentID)
	}
}

func TestParseLineFallback(t *testing.T) {
	response := `file_name, matched_text
seg-001, first excerpt
seg-002, second excerpt

this line has no use`

	matches := NewParser().Parse(response)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].SegmentID != "seg-001" || matches[0].Text != "first excerpt" {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[1].SegmentID != "seg-002" || matches[1].Text != "second excerpt" {
		t.Errorf("second match = %+v", matches[1])
	}
}

func TestParseLineDiscardsOverlongID(t *testing.T) {
	long := make([]byte, maxSegmentID+1)
	for i := range long {
		long[i] = 'x'
	}
	response := string(long) + ", text\nok, kept"

	matches := NewParser().Parse(response)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].SegmentID != "ok" {
		t.Errorf("id = %q", matches[0].SegmentID)
	}
}

func TestParseHeaderOnlyResponse(t *testing.T) {
	if matches := NewParser().Parse("file_name, matched_text\n"); matches != nil {
		t.Errorf("expected nil, got %+v", matches)
	}
}

func TestParseUnrecognizedResponse(t *testing.T) {
	if matches := NewParser().Parse("I could not find any matches."); matches != nil {
		t.Errorf("expected nil, got %+v", matches)
	}
}

func TestParsePrefersBlockGrammar(t *testing.T) {
	// A block response also contains commas that the line grammar would
	// misread; the block grammar must win.
	response := "--- seg-001 ---, one, two, three"

	matches := NewParser().Parse(response)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Text != "one, two, three" {
		t.Errorf("text = %q", matches[0].Text)
	}
}
