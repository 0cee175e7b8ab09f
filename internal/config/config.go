// Package config loads and validates the TOML configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the corpus, reference, and output directory layout.
type Paths struct {
	SegmentsRoot   string `toml:"segments_root"`
	ReferencesRoot string `toml:"references_root"`
	OutputRoot     string `toml:"output_root"`
	DataDir        string `toml:"data_dir"`
}

// Oracle contains the alignment oracle connection settings.
type Oracle struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Mapping contains group-to-document mapping settings. TablePath points
// at a TOML mapping table; PartitionSuffix feeds the built-in month
// aliases when the table defines no partition entry of its own.
type Mapping struct {
	TablePath       string `toml:"table_path"`
	PartitionSuffix string `toml:"partition_suffix"`
}

// Server contains the status server bind address.
type Server struct {
	Bind string `toml:"bind"`
}

// Verify contains the optional deterministic match check. A threshold of
// 0 disables it.
type Verify struct {
	Threshold float64 `toml:"threshold"`
}

// Logging contains log output settings.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Oracle  Oracle  `toml:"oracle"`
	Mapping Mapping `toml:"mapping"`
	Server  Server  `toml:"server"`
	Verify  Verify  `toml:"verify"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/refalign/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. Environment
// variables REFALIGN_ORACLE_URL and REFALIGN_ORACLE_MODEL override the
// file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("refalign.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("REFALIGN_ORACLE_URL")); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REFALIGN_ORACLE_MODEL")); v != "" {
		c.Oracle.Model = v
	}
}

func (c *Config) normalize() error {
	for _, p := range []*string{
		&c.Paths.SegmentsRoot,
		&c.Paths.ReferencesRoot,
		&c.Paths.OutputRoot,
		&c.Paths.DataDir,
		&c.Mapping.TablePath,
	} {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// EnsureDirectories creates the directories a run writes into. The
// segment and reference roots are inputs and are never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputRoot, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified
// location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
