package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolvedPath, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("expected exists=false")
	}
	if resolvedPath != path {
		t.Errorf("resolvedPath = %q", resolvedPath)
	}
	if cfg.Oracle.BaseURL != defaultOracleBaseURL {
		t.Errorf("base_url = %q", cfg.Oracle.BaseURL)
	}
	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
segments_root = "` + dir + `/segments"
references_root = "` + dir + `/refs"
output_root = "` + dir + `/out"

[oracle]
model = "custom-model"

[verify]
threshold = 0.75
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Oracle.Model != "custom-model" {
		t.Errorf("model = %q", cfg.Oracle.Model)
	}
	if cfg.Oracle.BaseURL != defaultOracleBaseURL {
		t.Errorf("base_url should keep default, got %q", cfg.Oracle.BaseURL)
	}
	if cfg.Verify.Threshold != 0.75 {
		t.Errorf("threshold = %v", cfg.Verify.Threshold)
	}
	if cfg.Paths.SegmentsRoot != filepath.Join(dir, "segments") {
		t.Errorf("segments_root = %q", cfg.Paths.SegmentsRoot)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REFALIGN_ORACLE_URL", "http://override:11434")
	t.Setenv("REFALIGN_ORACLE_MODEL", "override-model")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Oracle.BaseURL != "http://override:11434" {
		t.Errorf("base_url = %q", cfg.Oracle.BaseURL)
	}
	if cfg.Oracle.Model != "override-model" {
		t.Errorf("model = %q", cfg.Oracle.Model)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[verify]
threshold = 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty segments root", func(c *Config) { c.Paths.SegmentsRoot = "" }},
		{"empty references root", func(c *Config) { c.Paths.ReferencesRoot = "" }},
		{"empty output root", func(c *Config) { c.Paths.OutputRoot = "" }},
		{"empty oracle url", func(c *Config) { c.Oracle.BaseURL = "" }},
		{"empty oracle model", func(c *Config) { c.Oracle.Model = "" }},
		{"zero timeout", func(c *Config) { c.Oracle.TimeoutSeconds = 0 }},
		{"negative threshold", func(c *Config) { c.Verify.Threshold = -0.1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[oracle]") {
		t.Error("sample config missing [oracle] section")
	}

	// The embedded sample must itself be loadable.
	if _, _, _, err := Load(path); err != nil {
		t.Errorf("sample config does not load: %v", err)
	}
}
