package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeAPI()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("AUTOMV_REPO_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.RepoDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.RepoDir) == "" {
		c.Paths.RepoDir = defaultRepoDir
	}
	if c.Paths.RepoDir, err = expandPath(strings.TrimSpace(c.Paths.RepoDir)); err != nil {
		return fmt.Errorf("paths.repo_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = filepath.Join(c.Paths.RepoDir, defaultResultsSubdir)
	}
	if c.Paths.ResultsDir, err = expandPath(strings.TrimSpace(c.Paths.ResultsDir)); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.EnvFile) == "" {
		c.Paths.EnvFile = filepath.Join(c.Paths.RepoDir, defaultEnvFileName)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	if c.Paths.LockFile, err = expandPath(strings.TrimSpace(c.Paths.LockFile)); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.PythonBinary = strings.TrimSpace(c.Pipeline.PythonBinary)
	if c.Pipeline.PythonBinary == "" {
		c.Pipeline.PythonBinary = defaultPythonBinary
	}
	c.Pipeline.Stage1Module = strings.TrimSpace(c.Pipeline.Stage1Module)
	if c.Pipeline.Stage1Module == "" {
		c.Pipeline.Stage1Module = defaultStage1Module
	}
	c.Pipeline.DriverFile = strings.TrimSpace(c.Pipeline.DriverFile)
	if c.Pipeline.DriverFile == "" {
		c.Pipeline.DriverFile = defaultDriverFile
	}
	c.Pipeline.ExternalConfig = strings.TrimSpace(c.Pipeline.ExternalConfig)
	if c.Pipeline.ExternalConfig == "" {
		c.Pipeline.ExternalConfig = defaultExternalConfig
	}
	if c.Pipeline.StageTimeoutSeconds < 0 {
		c.Pipeline.StageTimeoutSeconds = 0
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if c.API.MaxUploadMiB <= 0 {
		c.API.MaxUploadMiB = defaultAPIMaxUploadMiB
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
