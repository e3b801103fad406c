package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if strings.ContainsAny(c.Pipeline.DriverFile, `/\`) {
		return fmt.Errorf("pipeline.driver_file must be a bare file name, got %q", c.Pipeline.DriverFile)
	}
	if filepath.Ext(c.Pipeline.DriverFile) != ".py" {
		return fmt.Errorf("pipeline.driver_file must end in .py, got %q", c.Pipeline.DriverFile)
	}
	if filepath.IsAbs(c.Pipeline.ExternalConfig) {
		return errors.New("pipeline.external_config must be relative to paths.repo_dir")
	}
	if strings.HasPrefix(filepath.Clean(c.Pipeline.ExternalConfig), "..") {
		return errors.New("pipeline.external_config must stay inside paths.repo_dir")
	}
	if strings.ContainsAny(c.Pipeline.Stage1Module, " /") {
		return fmt.Errorf("pipeline.stage1_module must be a dotted module path, got %q", c.Pipeline.Stage1Module)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
