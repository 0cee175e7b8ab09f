package prompt

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	b := NewBuilder()
	request := b.Build([]Segment{
		{ID: "001", Text: "first fragment"},
		{ID: "002", Text: "second fragment"},
	}, "the full reference text")

	if !strings.Contains(request, "strict text-matcher") {
		t.Error("missing instruction header")
	}
	if !strings.Contains(request, "60%") {
		t.Error("missing similarity floor")
	}
	if !strings.Contains(request, "--- 001 ---\nfirst fragment\n") {
		t.Error("missing first segment block")
	}
	if !strings.Contains(request, "--- 002 ---\nsecond fragment\n") {
		t.Error("missing second segment block")
	}

	first := strings.Index(request, "--- 001 ---")
	second := strings.Index(request, "--- 002 ---")
	transcript := strings.Index(request, "Full Transcript:\n")
	if first < 0 || second < first || transcript < second {
		t.Errorf("sections out of order: %d, %d, %d", first, second, transcript)
	}
	if !strings.HasSuffix(request, "the full reference text\n") {
		t.Error("reference text not at the end")
	}
}

func TestBuildNoSegments(t *testing.T) {
	request := NewBuilder().Build(nil, "ref")
	if !strings.Contains(request, "Full Transcript:\nref") {
		t.Error("reference section missing")
	}
	if strings.Contains(request, "--- ") {
		t.Error("unexpected segment block")
	}
}
