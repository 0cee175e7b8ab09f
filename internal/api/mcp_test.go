package api

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"refalign/internal/progress"
)

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func testMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	return MCPDeps{
		Tracker: &mockScanner{records: []progress.Record{
			{GroupKey: "jan/standup", Partition: "jan", Group: "standup", Expected: 3, Completed: 1},
			{GroupKey: "feb/retro", Partition: "feb", Group: "retro", Expected: 2, Completed: 2},
		}},
		OutputRoot: t.TempDir(),
	}
}

func TestMCPTool_Progress(t *testing.T) {
	handler := mcpProgress(testMCPDeps(t))

	result, err := handler(context.Background(), makeCallToolRequest("alignment_progress", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var entries []progressEntry
	if err := json.Unmarshal([]byte(toolText(t, result)), &entries); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "partial" {
		t.Errorf("status = %q", entries[0].Status)
	}
}

func TestMCPTool_ProgressPartitionFilter(t *testing.T) {
	handler := mcpProgress(testMCPDeps(t))

	result, err := handler(context.Background(), makeCallToolRequest("alignment_progress", map[string]interface{}{
		"partition": "FEB",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []progressEntry
	if err := json.Unmarshal([]byte(toolText(t, result)), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].GroupKey != "feb/retro" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestMCPTool_GetMatch(t *testing.T) {
	deps := testMCPDeps(t)
	dir := filepath.Join(deps.OutputRoot, "jan", "standup")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "001.txt"), []byte("matched excerpt"), 0o644); err != nil {
		t.Fatal(err)
	}

	handler := mcpGetMatch(deps)
	result, err := handler(context.Background(), makeCallToolRequest("get_match", map[string]interface{}{
		"group_key":  "jan/standup",
		"segment_id": "001",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "matched excerpt" {
		t.Errorf("text = %q", got)
	}
}

func TestMCPTool_GetMatchMissing(t *testing.T) {
	handler := mcpGetMatch(testMCPDeps(t))
	result, err := handler(context.Background(), makeCallToolRequest("get_match", map[string]interface{}{
		"group_key":  "jan/standup",
		"segment_id": "404",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing artifact")
	}
}

func TestMCPTool_GetMatchBadKey(t *testing.T) {
	handler := mcpGetMatch(testMCPDeps(t))
	result, err := handler(context.Background(), makeCallToolRequest("get_match", map[string]interface{}{
		"group_key":  "no-slash",
		"segment_id": "001",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for malformed key")
	}
}
