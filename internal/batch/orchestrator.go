// Package batch sequences the alignment pipeline over the work set:
// resolve reference, build request, submit to the oracle, parse, write,
// recompute progress. Groups are processed strictly one at a time; the
// oracle is a single stateful session and each round trip blocks for
// seconds to minutes.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"refalign/internal/corpus"
	"refalign/internal/ledger"
	"refalign/internal/oracle"
	"refalign/internal/parse"
	"refalign/internal/progress"
	"refalign/internal/prompt"
)

// Resolver maps a group to its reference document path.
type Resolver interface {
	Resolve(group corpus.Group) (string, error)
}

// ReferenceLoader extracts plain text from a reference document.
type ReferenceLoader interface {
	Load(path string) (string, error)
}

// RequestBuilder composes the alignment request text.
type RequestBuilder interface {
	Build(segments []prompt.Segment, reference string) string
}

// ResponseParser extracts matches from the raw oracle response.
type ResponseParser interface {
	Parse(response string) []parse.Match
}

// ResultWriter persists and purges a group's match artifacts.
type ResultWriter interface {
	Write(groupKey string, matches []parse.Match) (int, error)
	Purge(groupKey string) (int, error)
}

// ProgressTracker recomputes a single group's completion record.
type ProgressTracker interface {
	Group(groupKey string) (progress.Record, error)
}

// MatchChecker optionally filters matches by deterministic similarity.
type MatchChecker interface {
	Enabled() bool
	Accept(segmentText, matchedText string) bool
}

// RunRecorder persists diagnostic run history. All recorder failures are
// logged and ignored; the ledger never gates the pipeline.
type RunRecorder interface {
	CreateRun(ledger.Run) error
	FinishRun(id string, processed, skipped, failed int, status string) error
	RecordGroupRun(ledger.GroupRun) error
}

// Deps holds the orchestrator's collaborators. Ledger and Checker are
// optional.
type Deps struct {
	Resolver  Resolver
	Documents ReferenceLoader
	Prompts   RequestBuilder
	Oracle    oracle.Oracle
	Parser    ResponseParser
	Writer    ResultWriter
	Tracker   ProgressTracker
	Ledger    RunRecorder
	Checker   MatchChecker
	Logger    *slog.Logger
}

// Orchestrator drives the batch.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{deps: deps, logger: logger}
}

// Summary aggregates one run's outcome.
type Summary struct {
	Total     int // groups in the work set
	Processed int // groups that reached the writer (including zero-match responses)
	Skipped   int // groups skipped before submission (resolution, reads)
	Failed    int // groups that errored at the oracle or writer
	Written   int // artifacts written across all groups
}

type groupOutcome struct {
	status   string // "written", "empty", "skipped", "failed"
	segments int
	matches  int
	written  int
	reason   string
}

// Run processes each group in order, isolating per-group failures: any
// failure at resolve, build, parse, or write is logged at group
// granularity and the batch moves on. The run aborts up front if the
// oracle is unreachable, and stops early on context cancellation.
func (o *Orchestrator) Run(ctx context.Context, groups []corpus.Group) (Summary, error) {
	if !o.deps.Oracle.IsReady(ctx) {
		return Summary{}, fmt.Errorf("oracle endpoint unreachable at startup")
	}

	runID := uuid.New().String()
	o.recordRunStart(runID, len(groups))

	summary := Summary{Total: len(groups)}
	status := "completed"
	for i, g := range groups {
		if ctx.Err() != nil {
			status = "interrupted"
			break
		}

		o.logger.Info("processing group", "group", g.Key, "segments", len(g.Segments), "position", fmt.Sprintf("%d/%d", i+1, len(groups)))

		start := time.Now()
		out := o.processGroup(ctx, g)
		switch out.status {
		case "written", "empty":
			summary.Processed++
		case "skipped":
			summary.Skipped++
		case "failed":
			summary.Failed++
		}
		summary.Written += out.written

		o.recordGroupRun(runID, g.Key, out, time.Since(start))
	}

	if ctx.Err() != nil {
		status = "interrupted"
	}
	o.recordRunFinish(runID, summary, status)

	o.logger.Info("batch finished",
		"status", status,
		"groups", summary.Total,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"artifacts", summary.Written,
	)
	return summary, nil
}

func (o *Orchestrator) processGroup(ctx context.Context, g corpus.Group) groupOutcome {
	out := groupOutcome{segments: len(g.Segments)}

	docPath, err := o.deps.Resolver.Resolve(g)
	if err != nil {
		o.logger.Warn("skipping group", "group", g.Key, "reason", err)
		out.status, out.reason = "skipped", err.Error()
		return out
	}

	reference, err := o.deps.Documents.Load(docPath)
	if err != nil {
		o.logger.Warn("skipping group: reference unreadable", "group", g.Key, "doc", docPath, "error", err)
		out.status, out.reason = "skipped", err.Error()
		return out
	}

	segments := o.loadSegments(g)
	if len(segments) == 0 {
		o.logger.Warn("skipping group: no readable segments", "group", g.Key)
		out.status, out.reason = "skipped", "no readable segments"
		return out
	}

	request := o.deps.Prompts.Build(segments, reference)
	o.logger.Debug("submitting request", "group", g.Key, "request_chars", len(request))

	response, err := o.deps.Oracle.Submit(ctx, request)
	if err != nil {
		// A timed-out submission may still have captured partial text;
		// parse whatever arrived rather than discarding it.
		if response == "" {
			o.logger.Warn("oracle submission failed", "group", g.Key, "error", err)
			out.status, out.reason = "failed", err.Error()
			return out
		}
		o.logger.Warn("oracle submission incomplete, parsing captured text", "group", g.Key, "error", err)
	}
	if response == "" {
		o.logger.Warn("empty oracle response, skipping group", "group", g.Key)
		out.status, out.reason = "skipped", "empty oracle response"
		return out
	}

	matches := o.deps.Parser.Parse(response)
	out.matches = len(matches)
	if len(matches) == 0 {
		// Not an error: the oracle found no qualifying excerpts. Prior
		// outputs for the group stay untouched.
		o.logger.Info("no matches parsed", "group", g.Key, "response_chars", len(response))
		out.status = "empty"
		return out
	}

	kept := o.filterMatches(g, segments, matches)
	if len(kept) == 0 {
		out.status = "empty"
		return out
	}

	// Reprocessing a group that already has artifacts: purge first so
	// stale and fresh results never mix.
	if rec, err := o.deps.Tracker.Group(g.Key); err != nil {
		o.logger.Warn("could not recompute progress before write", "group", g.Key, "error", err)
	} else if rec.Completed > 0 {
		removed, err := o.deps.Writer.Purge(g.Key)
		if err != nil {
			o.logger.Warn("purging prior artifacts failed", "group", g.Key, "error", err)
			out.status, out.reason = "failed", err.Error()
			return out
		}
		o.logger.Info("purged prior artifacts", "group", g.Key, "removed", removed)
	}

	written, err := o.deps.Writer.Write(g.Key, kept)
	out.written = written
	if err != nil {
		o.logger.Warn("writing artifacts failed", "group", g.Key, "error", err)
		out.status, out.reason = "failed", err.Error()
		return out
	}

	if rec, err := o.deps.Tracker.Group(g.Key); err == nil {
		o.logger.Info("group done", "group", g.Key, "written", written, "completed", rec.Completed, "expected", rec.Expected, "status", rec.Status().String())
	} else {
		o.logger.Info("group done", "group", g.Key, "written", written)
	}
	out.status = "written"
	return out
}

// loadSegments reads each segment's text, skipping unreadable files with
// a warning so one bad segment never sinks its group.
func (o *Orchestrator) loadSegments(g corpus.Group) []prompt.Segment {
	segments := make([]prompt.Segment, 0, len(g.Segments))
	for _, s := range g.Segments {
		text, err := s.Text()
		if err != nil {
			o.logger.Warn("skipping unreadable segment", "group", g.Key, "segment", s.ID, "error", err)
			continue
		}
		segments = append(segments, prompt.Segment{ID: s.ID, Text: text})
	}
	return segments
}

// filterMatches drops matches for segment ids the group does not contain
// (the oracle occasionally hallucinates identifiers) and, when the
// checker is enabled, matches below the similarity floor. Artifacts
// written can therefore never exceed segments discovered.
func (o *Orchestrator) filterMatches(g corpus.Group, segments []prompt.Segment, matches []parse.Match) []parse.Match {
	texts := make(map[string]string, len(segments))
	for _, s := range segments {
		texts[s.ID] = s.Text
	}

	kept := make([]parse.Match, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(m.SegmentID, corpus.SegmentExt)
		text, ok := texts[id]
		if !ok {
			o.logger.Warn("dropping match for unknown segment id", "group", g.Key, "id", m.SegmentID)
			continue
		}
		if seen[id] {
			o.logger.Warn("dropping duplicate match", "group", g.Key, "id", id)
			continue
		}
		if o.deps.Checker != nil && o.deps.Checker.Enabled() && !o.deps.Checker.Accept(text, m.Text) {
			o.logger.Info("dropping match below similarity floor", "group", g.Key, "id", id)
			continue
		}
		seen[id] = true
		kept = append(kept, parse.Match{SegmentID: id, Text: m.Text})
	}
	return kept
}

func (o *Orchestrator) recordRunStart(runID string, total int) {
	if o.deps.Ledger == nil {
		return
	}
	err := o.deps.Ledger.CreateRun(ledger.Run{
		ID:          runID,
		StartedAt:   time.Now().UTC(),
		GroupsTotal: total,
	})
	if err != nil {
		o.logger.Warn("could not record run start", "error", err)
	}
}

func (o *Orchestrator) recordGroupRun(runID, groupKey string, out groupOutcome, elapsed time.Duration) {
	if o.deps.Ledger == nil {
		return
	}
	err := o.deps.Ledger.RecordGroupRun(ledger.GroupRun{
		ID:         uuid.New().String(),
		RunID:      runID,
		GroupKey:   groupKey,
		Segments:   out.segments,
		Matches:    out.matches,
		Written:    out.written,
		Status:     out.status,
		Error:      out.reason,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		o.logger.Warn("could not record group run", "group", groupKey, "error", err)
	}
}

func (o *Orchestrator) recordRunFinish(runID string, s Summary, status string) {
	if o.deps.Ledger == nil {
		return
	}
	if err := o.deps.Ledger.FinishRun(runID, s.Processed, s.Skipped, s.Failed, status); err != nil {
		o.logger.Warn("could not record run finish", "error", err)
	}
}
