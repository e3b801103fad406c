package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"automv/internal/config"
	"automv/internal/settings"
)

// AutoMVConfig is a minimal stand-in for AutoMV's config.py.
const AutoMVConfig = `import os

class Config:
    music_name = "1"
    DOUBAO_API_KEY = os.getenv("DOUBAO_API_KEY")
`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a fresh temp directory with an
// AutoMV checkout containing config.py. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	repo := filepath.Join(base, "AutoMV_repo")
	cfgVal := config.Default()
	cfgVal.Paths.RepoDir = repo
	cfgVal.Paths.ResultsDir = filepath.Join(repo, "result")
	cfgVal.Paths.EnvFile = filepath.Join(repo, ".env")
	cfgVal.Paths.LockFile = filepath.Join(base, "state", "automv.lock")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.Bind = "127.0.0.1:0"

	for _, dir := range []string{repo, filepath.Dir(cfgVal.Paths.LockFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(cfgVal.ExternalConfigPath(), []byte(AutoMVConfig), 0o644); err != nil {
		t.Fatalf("write config.py: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCredentials saves the two required API keys under the given provider.
func WithCredentials(provider settings.Provider) ConfigOption {
	return func(b *configBuilder) {
		store := settings.NewStore(b.cfg.Paths.EnvFile)
		if _, err := store.Save(string(provider), map[string]string{
			"GEMINI_API_KEY": "test-gemini",
			"DOUBAO_API_KEY": "test-ark",
		}); err != nil {
			b.t.Fatalf("save credentials: %v", err)
		}
	}
}

// WithStageTimeout bounds each stage.
func WithStageTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.StageTimeoutSeconds = seconds
	}
}

// WithStubbedPython writes a shell script standing in for the python
// interpreter and points the config at it. The script body receives the
// interpreter arguments as "$@" and runs with the AutoMV checkout as cwd.
func WithStubbedPython(body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "python")
		script := []byte("#!/bin/sh\n" + body + "\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub python: %v", err)
		}
		b.cfg.Pipeline.PythonBinary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RepoDir)
}
