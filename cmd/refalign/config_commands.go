package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"refalign/internal/config"
	"refalign/internal/mapping"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, resolvedPath, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if exists {
			printStatus("Config file", "%s", resolvedPath)
		} else {
			printStatus("Config file", "%s (not found, using defaults)", resolvedPath)
		}
		printStatus("Segments root", "%s", cfg.Paths.SegmentsRoot)
		printStatus("References root", "%s", cfg.Paths.ReferencesRoot)
		printStatus("Output root", "%s", cfg.Paths.OutputRoot)
		printStatus("Data dir", "%s", cfg.Paths.DataDir)
		printStatus("Oracle", "%s (model %s, timeout %ds)", cfg.Oracle.BaseURL, cfg.Oracle.Model, cfg.Oracle.TimeoutSeconds)
		if cfg.Mapping.TablePath != "" {
			printStatus("Mapping table", "%s", cfg.Mapping.TablePath)
		} else {
			printStatus("Mapping table", "built-in month aliases only")
		}
		if cfg.Verify.Threshold > 0 {
			printStatus("Verify threshold", "%.2f", cfg.Verify.Threshold)
		} else {
			printStatus("Verify threshold", "disabled")
		}
		printStatus("Server bind", "%s", cfg.Server.Bind)
		printStatus("Log level", "%s", cfg.Logging.Level)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			path = defaultPath
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}

		if err := config.CreateSample(path); err != nil {
			return err
		}
		printSuccess("wrote sample config to %s", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and mapping table",
	Long: `Load and validate the configuration, then cross-check the mapping
table: every group entry's reference document should exist somewhere
under the references root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, resolvedPath, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if !exists {
			printWarning("no config file at %s, defaults validate trivially", resolvedPath)
		}
		printSuccess("configuration is valid")

		if cfg.Mapping.TablePath == "" {
			return nil
		}
		table, err := mapping.LoadTable(cfg.Mapping.TablePath)
		if err != nil {
			return err
		}
		printSuccess("mapping table is valid")

		missing := missingDocuments(table, cfg.Paths.ReferencesRoot)
		if len(missing) > 0 {
			for _, doc := range missing {
				printWarning("mapped document not found under references root: %s", doc)
			}
			return fmt.Errorf("%d mapped documents are missing", len(missing))
		}
		printSuccess("all mapped documents exist")
		return nil
	},
}

// missingDocuments reports mapped document filenames that appear nowhere
// under the references root.
func missingDocuments(table *mapping.Table, refsRoot string) []string {
	present := make(map[string]bool)
	filepath.WalkDir(refsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			present[d.Name()] = true
		}
		return nil
	})

	var missing []string
	seen := make(map[string]bool)
	for _, group := range table.Groups() {
		doc, ok := table.Document(group)
		if !ok || seen[doc] {
			continue
		}
		seen[doc] = true
		if !present[doc] {
			missing = append(missing, doc)
		}
	}
	return missing
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}
