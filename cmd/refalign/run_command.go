package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"refalign/internal/batch"
	"refalign/internal/corpus"
	"refalign/internal/document"
	"refalign/internal/ledger"
	"refalign/internal/mapping"
	"refalign/internal/oracle"
	"refalign/internal/output"
	"refalign/internal/parse"
	"refalign/internal/progress"
	"refalign/internal/prompt"
	"refalign/internal/verify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process incomplete groups through the alignment oracle",
	Long: `Discover segment groups, skip the ones whose output is already complete,
and submit the rest to the alignment oracle one group at a time.

Interrupting a run is safe: artifacts written so far are kept, and the
next run picks up the remaining groups.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		only, _ := cmd.Flags().GetStringSlice("groups")
		return runBatch(all, only)
	},
}

func init() {
	runCmd.Flags().Bool("all", false, "reprocess groups whose output is already complete")
	runCmd.Flags().StringSlice("groups", nil, "restrict the run to specific group keys (partition/group)")
}

func runBatch(all bool, only []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level)

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "refalign.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another refalign run is already in progress")
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := buildTable(cfg)
	if err != nil {
		return err
	}

	groups, err := corpus.DiscoverGroups(cfg.Paths.SegmentsRoot)
	if err != nil {
		return fmt.Errorf("discovering segment groups: %w", err)
	}
	if len(groups) == 0 {
		printWarning("no segment groups found under %s", cfg.Paths.SegmentsRoot)
		return nil
	}

	tracker := progress.NewTracker(cfg.Paths.SegmentsRoot, cfg.Paths.OutputRoot)
	selected, err := selectGroups(groups, tracker, all, only)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		printSuccess("all %d groups are already complete", len(groups))
		return nil
	}
	printStep("processing %d of %d groups", len(selected), len(groups))

	var recorder batch.RunRecorder
	store, err := ledger.Open(cfg.Paths.DataDir)
	if err != nil {
		slog.Warn("run history unavailable", "error", err)
	} else {
		defer store.Close()
		recorder = store
	}

	orch := batch.New(batch.Deps{
		Resolver:  mapping.NewResolver(table, cfg.Paths.ReferencesRoot),
		Documents: document.NewReader(),
		Prompts:   prompt.NewBuilder(),
		Oracle:    oracle.NewOllama(cfg.Oracle.BaseURL, cfg.Oracle.Model, time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second),
		Parser:    parse.NewParser(),
		Writer:    output.NewWriter(cfg.Paths.OutputRoot),
		Tracker:   tracker,
		Ledger:    recorder,
		Checker:   verify.New(cfg.Verify.Threshold),
		Logger:    slog.Default(),
	})

	summary, err := orch.Run(ctx, selected)
	if err != nil {
		return err
	}

	printSummary(summary)
	if ctx.Err() != nil {
		printWarning("run interrupted, re-run to resume")
	}
	return nil
}

// selectGroups filters discovered groups down to the work set: by
// default every group that still lacks artifacts, or an explicit key
// list, or everything under --all.
func selectGroups(groups []corpus.Group, tracker *progress.Tracker, all bool, only []string) ([]corpus.Group, error) {
	if len(only) > 0 {
		byKey := make(map[string]corpus.Group, len(groups))
		for _, g := range groups {
			byKey[g.Key] = g
		}
		selected := make([]corpus.Group, 0, len(only))
		for _, key := range only {
			g, ok := byKey[key]
			if !ok {
				return nil, fmt.Errorf("unknown group key %q", key)
			}
			selected = append(selected, g)
		}
		return selected, nil
	}

	if all {
		return groups, nil
	}

	records, err := tracker.Scan()
	if err != nil {
		return nil, fmt.Errorf("scanning progress: %w", err)
	}
	remaining := make(map[string]bool)
	for _, rec := range progress.WorkSet(records) {
		remaining[rec.GroupKey] = true
	}

	selected := make([]corpus.Group, 0, len(groups))
	for _, g := range groups {
		if remaining[g.Key] {
			selected = append(selected, g)
		}
	}
	return selected, nil
}

func printSummary(s batch.Summary) {
	printStatus("Groups", "%d", s.Total)
	printStatus("Processed", "%d", s.Processed)
	printStatus("Skipped", "%d", s.Skipped)
	printStatus("Failed", "%d", s.Failed)
	printStatus("Artifacts", "%d", s.Written)
	if s.Failed == 0 && s.Skipped == 0 {
		printSuccess("batch complete")
	}
}
