package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"refalign/internal/config"
	"refalign/internal/mapping"
)

func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	return cfg, err
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// buildTable loads the configured correspondence table, or falls back to
// a table carrying only the built-in month aliases when no table file is
// configured.
func buildTable(cfg *config.Config) (*mapping.Table, error) {
	if strings.TrimSpace(cfg.Mapping.TablePath) != "" {
		table, err := mapping.LoadTable(cfg.Mapping.TablePath)
		if err != nil {
			return nil, fmt.Errorf("loading correspondence table: %w", err)
		}
		return table, nil
	}
	return mapping.NewTable(nil, nil, mapping.DefaultAliases(cfg.Mapping.PartitionSuffix))
}
