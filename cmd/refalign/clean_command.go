package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"refalign/internal/corpus"
	"refalign/internal/output"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "List or remove stale artifacts in the output tree",
	Long: `Find output artifacts that no longer correspond to any discovered
segment, such as leftovers from renamed groups or deleted segments.
Without --force nothing is deleted; stale files are only listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runClean(force)
	},
}

func init() {
	cleanCmd.Flags().Bool("force", false, "delete stale artifacts instead of listing them")
}

func runClean(force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groups, err := corpus.DiscoverGroups(cfg.Paths.SegmentsRoot)
	if err != nil {
		return fmt.Errorf("discovering segment groups: %w", err)
	}

	// Expected artifact names per group key, matching the writer's naming.
	expected := make(map[string]map[string]bool, len(groups))
	for _, g := range groups {
		names := make(map[string]bool, len(g.Segments))
		for _, s := range g.Segments {
			names[output.SanitizeName(s.ID)+corpus.SegmentExt] = true
		}
		expected[g.Key] = names
	}

	stale, err := findStaleArtifacts(cfg.Paths.OutputRoot, expected)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		printSuccess("output tree is clean")
		return nil
	}

	for _, path := range stale {
		rel, relErr := filepath.Rel(cfg.Paths.OutputRoot, path)
		if relErr != nil {
			rel = path
		}
		if force {
			if err := os.Remove(path); err != nil {
				printError("could not remove %s: %v", rel, err)
				continue
			}
			printStep("removed %s", rel)
		} else {
			fmt.Println(rel)
		}
	}

	if force {
		printSuccess("removed %d stale artifacts", len(stale))
	} else {
		printWarning("%d stale artifacts found, re-run with --force to delete", len(stale))
	}
	return nil
}

// findStaleArtifacts walks the two-level output tree and collects every
// artifact file whose group or name has no counterpart in the segment
// corpus. Unexpected directory levels are left alone.
func findStaleArtifacts(root string, expected map[string]map[string]bool) ([]string, error) {
	partitions, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading output root: %w", err)
	}

	var stale []string
	for _, p := range partitions {
		if !p.IsDir() {
			continue
		}
		groupsDir := filepath.Join(root, p.Name())
		groupEntries, err := os.ReadDir(groupsDir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", groupsDir, err)
		}
		for _, g := range groupEntries {
			if !g.IsDir() {
				continue
			}
			key := corpus.Key(p.Name(), g.Name())
			names := expected[key]
			dir := filepath.Join(groupsDir, g.Name())
			files, err := os.ReadDir(dir)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", dir, err)
			}
			for _, f := range files {
				if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), corpus.SegmentExt) {
					continue
				}
				if names == nil || !names[f.Name()] {
					stale = append(stale, filepath.Join(dir, f.Name()))
				}
			}
		}
	}
	return stale, nil
}
