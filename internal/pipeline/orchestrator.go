package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"automv/internal/config"
	"automv/internal/configguard"
	"automv/internal/driver"
	"automv/internal/logging"
	"automv/internal/notifications"
	"automv/internal/project"
	"automv/internal/settings"
)

// Request is one generation request as the user submitted it.
type Request struct {
	AudioPath  string
	Name       string
	LipSync    driver.LipSyncMode
	Resolution driver.Resolution
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithNotifier replaces the ntfy service built from config.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *Orchestrator) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}

// Orchestrator drives the two AutoMV stages for a request.
type Orchestrator struct {
	cfg      *config.Config
	settings *settings.Store
	projects *project.Store
	guard    *configguard.Guard
	exec     Executor
	notifier notifications.Service
	logger   *slog.Logger
}

// New wires an orchestrator around the configured AutoMV checkout.
func New(cfg *config.Config, settingsStore *settings.Store, projects *project.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		settings: settingsStore,
		projects: projects,
		guard:    configguard.New(cfg.ExternalConfigPath(), cfg.Paths.LockFile, logger),
		exec:     commandExecutor{},
		notifier: notifications.NewService(cfg),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Guard exposes the config guard so callers can recover a crashed run.
func (o *Orchestrator) Guard() *configguard.Guard {
	return o.guard
}

// Start prepares a run. Nothing happens until its snapshots are consumed.
func (o *Orchestrator) Start(req Request) *Run {
	return &Run{
		ID:     uuid.NewString(),
		req:    req,
		o:      o,
		status: StatusPending,
	}
}

func (o *Orchestrator) stage1Command(env []string) Command {
	return Command{
		Binary: o.cfg.Pipeline.PythonBinary,
		Args:   []string{"-m", o.cfg.Pipeline.Stage1Module},
		Dir:    o.cfg.Paths.RepoDir,
		Env:    env,
	}
}

func (o *Orchestrator) stage2Command(env []string) Command {
	return Command{
		Binary: o.cfg.Pipeline.PythonBinary,
		Args:   []string{filepath.Base(o.cfg.DriverPath())},
		Dir:    o.cfg.Paths.RepoDir,
		Env:    env,
	}
}

// childEnv layers the saved settings and PYTHONPATH over the inherited
// environment. Later entries win.
func (o *Orchestrator) childEnv(base []string, s settings.Settings) []string {
	env := make([]string, 0, len(base)+len(s.Values())+1)
	env = append(env, base...)
	env = append(env, s.Environ()...)
	env = append(env, "PYTHONPATH="+o.cfg.Paths.RepoDir)
	return env
}

func isSupportedAudioExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	default:
		return false
	}
}
