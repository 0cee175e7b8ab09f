package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"refalign/internal/ledger"
	"refalign/internal/progress"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show alignment progress per partition and group",
	RunE: func(cmd *cobra.Command, args []string) error {
		incompleteOnly, _ := cmd.Flags().GetBool("incomplete")
		history, _ := cmd.Flags().GetInt("history")
		return runReport(incompleteOnly, history)
	},
}

func init() {
	reportCmd.Flags().Bool("incomplete", false, "only list groups that still need processing")
	reportCmd.Flags().Int("history", 0, "also show the N most recent runs from the ledger")
}

func runReport(incompleteOnly bool, history int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(cfg.Paths.SegmentsRoot, cfg.Paths.OutputRoot)
	records, err := tracker.Scan()
	if err != nil {
		return fmt.Errorf("scanning progress: %w", err)
	}
	if len(records) == 0 {
		printWarning("no segment groups found under %s", cfg.Paths.SegmentsRoot)
		return nil
	}

	printProgressTables(records, incompleteOnly)

	if history > 0 {
		if err := printHistory(cfg.Paths.DataDir, history); err != nil {
			return err
		}
	}
	return nil
}

func printProgressTables(records []progress.Record, incompleteOnly bool) {
	byPartition := make(map[string][]progress.Record)
	for _, rec := range records {
		byPartition[rec.Partition] = append(byPartition[rec.Partition], rec)
	}
	partitions := make([]string, 0, len(byPartition))
	for p := range byPartition {
		partitions = append(partitions, p)
	}
	sort.Strings(partitions)

	totals := struct{ groups, complete, segments, artifacts int }{}
	for _, partition := range partitions {
		rows := make([][]string, 0, len(byPartition[partition]))
		for _, rec := range byPartition[partition] {
			status := rec.Status()
			totals.groups++
			totals.segments += rec.Expected
			totals.artifacts += rec.Completed
			if status == progress.Complete {
				totals.complete++
				if incompleteOnly {
					continue
				}
			}
			rows = append(rows, []string{
				rec.Group,
				fmt.Sprintf("%d", rec.Expected),
				fmt.Sprintf("%d", rec.Completed),
				statusLabel(status),
			})
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Println(colorize(colorBold, partition))
		fmt.Println(renderTable(
			[]string{"Group", "Segments", "Matched", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
		fmt.Println()
	}

	printStatus("Groups", "%d (%d complete)", totals.groups, totals.complete)
	printStatus("Segments", "%d", totals.segments)
	printStatus("Artifacts", "%d", totals.artifacts)
	remaining := len(progress.WorkSet(records))
	if remaining == 0 {
		printSuccess("nothing left to process")
	} else {
		printStep("%d groups still need processing", remaining)
	}
}

func statusLabel(s progress.Status) string {
	switch s {
	case progress.Complete:
		return colorize(colorGreen, s.String())
	case progress.Partial:
		return colorize(colorYellow, s.String())
	case progress.Overshoot:
		return colorize(colorRed, s.String())
	default:
		return s.String()
	}
}

func printHistory(dataDir string, limit int) error {
	store, err := ledger.Open(dataDir)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}
	if len(runs) == 0 {
		printWarning("no recorded runs")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			r.StartedAt.Format("2006-01-02 15:04"),
			finished,
			fmt.Sprintf("%d", r.GroupsTotal),
			fmt.Sprintf("%d", r.GroupsProcessed),
			fmt.Sprintf("%d", r.GroupsSkipped),
			fmt.Sprintf("%d", r.GroupsFailed),
			r.Status,
		})
	}

	fmt.Println(colorize(colorBold, "Recent runs"))
	fmt.Println(renderTable(
		[]string{"Started", "Finished", "Groups", "Processed", "Skipped", "Failed", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}
