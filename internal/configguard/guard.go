package configguard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"

	"automv/internal/fileutil"
	"automv/internal/logging"
	"automv/internal/services"
	"automv/internal/textutil"
)

// BackupSuffix names the copy of the original config kept while a run is in
// flight.
const BackupSuffix = ".automv-orig"

var musicNameField = regexp.MustCompile(`music_name\s*=\s*"[^"]*"`)

// Guard owns temporary edits to AutoMV's config.py.
type Guard struct {
	configPath string
	lockPath   string
	logger     *slog.Logger
}

// New binds a guard to the external config file and the advisory lock that
// serializes runs across processes.
func New(configPath, lockPath string, logger *slog.Logger) *Guard {
	return &Guard{
		configPath: configPath,
		lockPath:   lockPath,
		logger:     logging.NewComponentLogger(logger, "configguard"),
	}
}

// ConfigPath returns the guarded file.
func (g *Guard) ConfigPath() string {
	return g.configPath
}

// BackupPath returns where the original bytes are parked during a run.
func (g *Guard) BackupPath() string {
	return g.configPath + BackupSuffix
}

// Rewrite sets every music_name assignment in content to name.
func Rewrite(content []byte, name string) []byte {
	return musicNameField.ReplaceAllLiteral(content, []byte(`music_name = "`+name+`"`))
}

// WithPatchedConfig takes the run lock, then behaves like Patch.
func (g *Guard) WithPatchedConfig(ctx context.Context, musicName string, body func(context.Context) error) error {
	if !textutil.IsProjectName(musicName) {
		return invalidName(musicName)
	}
	release, err := g.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()
	return g.Patch(ctx, musicName, body)
}

// Lock takes the advisory lock that serializes runs across processes. Only
// one holder may exist per lock file; a second caller gets services.ErrBusy.
// The returned release func drops the lock.
func (g *Guard) Lock(ctx context.Context) (release func(), err error) {
	logger := logging.WithContext(ctx, g.logger)
	if err := os.MkdirAll(filepath.Dir(g.lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "configguard", "lock", g.lockPath, err)
	}
	lock := flock.New(g.lockPath)
	locked, lockErr := lock.TryLock()
	if lockErr != nil {
		return nil, services.Wrap(services.ErrConfiguration, "configguard", "lock", g.lockPath, lockErr)
	}
	if !locked {
		return nil, services.Wrap(services.ErrBusy, "configguard", "lock",
			"another pipeline run is in progress", nil)
	}
	return func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release run lock", logging.String("lock", g.lockPath), logging.Error(unlockErr))
		}
	}, nil
}

// Patch points config.py at musicName, runs body, and puts the original bytes
// back on every exit path. The caller must hold Lock.
func (g *Guard) Patch(ctx context.Context, musicName string, body func(context.Context) error) (err error) {
	if !textutil.IsProjectName(musicName) {
		return invalidName(musicName)
	}
	logger := logging.WithContext(ctx, g.logger)

	if err := g.RecoverStale(); err != nil {
		return err
	}

	original, err := os.ReadFile(g.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrConfiguration, "configguard", "read",
				"external config not found at "+g.configPath, err)
		}
		return services.Wrap(services.ErrConfiguration, "configguard", "read", g.configPath, err)
	}

	if !musicNameField.Match(original) {
		logger.Warn("music_name field not found; config left as is", logging.String("config", g.configPath))
	}

	if err := fileutil.WriteFilePreserveMode(g.BackupPath(), original, 0o644); err != nil {
		return fmt.Errorf("write config backup: %w", err)
	}

	defer func() {
		if restoreErr := g.restore(original); restoreErr != nil {
			logger.Error("config restore failed", logging.String("config", g.configPath), logging.Error(restoreErr))
			err = errors.Join(err, restoreErr)
			return
		}
		logger.Debug("config restored", logging.String("config", g.configPath))
	}()

	if err := fileutil.WriteFilePreserveMode(g.configPath, Rewrite(original, musicName), 0o644); err != nil {
		return fmt.Errorf("write patched config: %w", err)
	}
	logger.Info("config pointed at project",
		logging.String("config", g.configPath),
		logging.String(logging.FieldProject, musicName),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return body(ctx)
}

// RecoverStale puts back a backup left by a process that died mid-run. It is
// a no-op when no backup exists.
func (g *Guard) RecoverStale() error {
	backup, err := os.ReadFile(g.BackupPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config backup: %w", err)
	}
	g.logger.Warn("restoring config from stale backup",
		logging.String("config", g.configPath),
		logging.String("backup", g.BackupPath()),
	)
	return g.restore(backup)
}

func (g *Guard) restore(original []byte) error {
	if err := fileutil.WriteFilePreserveMode(g.configPath, original, 0o644); err != nil {
		return fmt.Errorf("restore config: %w", err)
	}
	if err := os.Remove(g.BackupPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove config backup: %w", err)
	}
	return nil
}

func invalidName(name string) error {
	return services.Wrap(services.ErrValidation, "configguard", "patch",
		fmt.Sprintf("invalid music name %q", name), nil)
}
