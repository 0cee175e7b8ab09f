package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"refalign/internal/corpus"
	"refalign/internal/output"
	"refalign/internal/progress"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Tracker    ProgressScanner
	OutputRoot string
}

// NewMCPServer creates an MCP server exposing alignment progress and
// written match artifacts to agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"refalign",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("refalign — transcript segment alignment over reference documents. Query batch progress and read matched excerpts."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("alignment_progress",
			mcp.WithDescription("Report per-group alignment progress derived from the segment and output trees."),
			mcp.WithString("partition", mcp.Description("Optional partition name to filter by")),
		),
		mcpProgress(deps),
	)

	s.AddTool(
		mcp.NewTool("get_match",
			mcp.WithDescription("Return the matched reference excerpt written for one segment."),
			mcp.WithString("group_key", mcp.Description("Group key in partition/group form"), mcp.Required()),
			mcp.WithString("segment_id", mcp.Description("Segment identifier (file stem)"), mcp.Required()),
		),
		mcpGetMatch(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"refalign://progress",
			"Alignment Progress",
			mcp.WithResourceDescription("Completion records for every known group as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProgress(deps),
	)

	return s
}

func mcpProgress(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		partition := req.GetString("partition", "")

		records, err := deps.Tracker.Scan()
		if err != nil {
			return mcpError(fmt.Sprintf("progress scan failed: %v", err)), nil
		}

		entries := make([]progressEntry, 0, len(records))
		for _, rec := range records {
			if partition != "" && !strings.EqualFold(rec.Partition, partition) {
				continue
			}
			entries = append(entries, progressEntry{
				GroupKey:  rec.GroupKey,
				Partition: rec.Partition,
				Group:     rec.Group,
				Expected:  rec.Expected,
				Completed: rec.Completed,
				Status:    rec.Status().String(),
			})
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal progress: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetMatch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		groupKey, err := req.RequireString("group_key")
		if err != nil {
			return mcpError("group_key is required"), nil
		}
		segmentID, err := req.RequireString("segment_id")
		if err != nil {
			return mcpError("segment_id is required"), nil
		}

		partition, group, ok := strings.Cut(groupKey, "/")
		if !ok || partition == "" || group == "" || strings.Contains(group, "/") {
			return mcpError("group_key must be in partition/group form"), nil
		}

		name := output.SanitizeName(segmentID)
		if !strings.EqualFold(filepath.Ext(name), corpus.SegmentExt) {
			name += corpus.SegmentExt
		}
		path := filepath.Join(deps.OutputRoot, partition, group, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return mcpError(fmt.Sprintf("no match artifact for %s/%s", groupKey, segmentID)), nil
			}
			return mcpError(fmt.Sprintf("failed to read artifact: %v", err)), nil
		}
		return mcpText(string(data)), nil
	}
}

func mcpResourceProgress(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := deps.Tracker.Scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}

		entries := make([]progressEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, progressEntry{
				GroupKey:  rec.GroupKey,
				Partition: rec.Partition,
				Group:     rec.Group,
				Expected:  rec.Expected,
				Completed: rec.Completed,
				Status:    rec.Status().String(),
			})
		}
		remaining := len(progress.WorkSet(records))

		b, err := json.Marshal(progressResponse{Groups: entries, Remaining: remaining})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal progress: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
