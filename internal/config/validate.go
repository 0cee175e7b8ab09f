package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOracle(); err != nil {
		return err
	}
	if err := c.validateVerify(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SegmentsRoot) == "" {
		return errors.New("paths.segments_root must be set")
	}
	if strings.TrimSpace(c.Paths.ReferencesRoot) == "" {
		return errors.New("paths.references_root must be set")
	}
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		return errors.New("paths.output_root must be set")
	}
	return nil
}

func (c *Config) validateOracle() error {
	if strings.TrimSpace(c.Oracle.BaseURL) == "" {
		return errors.New("oracle.base_url must be set")
	}
	if strings.TrimSpace(c.Oracle.Model) == "" {
		return errors.New("oracle.model must be set")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return errors.New("oracle.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateVerify() error {
	if c.Verify.Threshold < 0 || c.Verify.Threshold > 1 {
		return errors.New("verify.threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
}
