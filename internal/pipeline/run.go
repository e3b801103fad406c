package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"

	"automv/internal/driver"
	"automv/internal/fileutil"
	"automv/internal/logging"
	"automv/internal/services"
	"automv/internal/textutil"
)

// Status is where a run ended up.
type Status string

const (
	StatusPending      Status = "pending"
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusStage1Failed Status = "stage1_failed"
	StatusStage2Failed Status = "stage2_failed"
	StatusRejected     Status = "rejected"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether the run has finished.
func (s Status) Terminal() bool {
	switch s {
	case StatusPending, StatusRunning:
		return false
	default:
		return true
	}
}

const defaultProjectName = "untitled"

const (
	msgNoAudio        = "Error: Please upload a music file."
	msgInvalidName    = "Error: Please provide a valid music name (letters, numbers, underscores)."
	msgUnsupportedExt = "Error: Only .mp3 and .wav files are supported."
	msgMissingKeys    = "Error: Required API keys not configured: %s\nPlease go to the Settings tab."
	msgBusy           = "Error: Another pipeline run is in progress. Try again when it finishes."
)

const msgLipSyncDowngrade = "Warning: Lip-sync (Jimeng) requires Volcengine (China) credentials.\n" +
	"Switching lip-sync to 'None' for BytePlus provider.\n\n"

// Run is one pipeline execution. Its transcript only ever grows.
type Run struct {
	ID string

	req Request
	o   *Orchestrator

	mu        sync.Mutex
	log       strings.Builder
	status    Status
	err       error
	consumed  bool
	project   string
	lipSync   driver.LipSyncMode
	videoPath string
}

// Snapshots executes the run, yielding the whole transcript after every
// appended piece. Breaking out of the loop cancels the run and kills any
// running stage; config.py is still restored. A second iteration yields the
// final transcript once.
func (r *Run) Snapshots(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.Lock()
		if r.consumed {
			snapshot := r.log.String()
			r.mu.Unlock()
			if snapshot != "" {
				yield(snapshot)
			}
			return
		}
		r.consumed = true
		r.status = StatusRunning
		r.mu.Unlock()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		em := &emitter{run: r, yield: yield, cancel: cancel}
		status, err := r.execute(ctx, em)

		r.mu.Lock()
		r.status, r.err = status, err
		r.mu.Unlock()
	}
}

// Wait drains the run without observing intermediate snapshots.
func (r *Run) Wait(ctx context.Context) (Status, error) {
	for range r.Snapshots(ctx) {
	}
	return r.Status(), r.Err()
}

// Status returns the current or terminal status.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Err returns the error behind a non-completed terminal status.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Transcript returns the log accumulated so far.
func (r *Run) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.String()
}

// Project returns the sanitized project name once validation has passed.
func (r *Run) Project() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.project
}

// LipSync returns the effective lip-sync mode after provider checks.
func (r *Run) LipSync() driver.LipSyncMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lipSync
}

// VideoPath returns the final video when the run produced one.
func (r *Run) VideoPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.videoPath
}

func (r *Run) append(text string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.WriteString(text)
	return r.log.String()
}

type emitter struct {
	run     *Run
	yield   func(string) bool
	cancel  context.CancelFunc
	stopped bool
}

func (e *emitter) emit(text string) {
	snapshot := e.run.append(text)
	if e.stopped {
		return
	}
	if !e.yield(snapshot) {
		e.stopped = true
		e.cancel()
	}
}

func rejected(component, message string, marker error) error {
	return services.Wrap(marker, "pipeline", component, strings.TrimPrefix(message, "Error: "), nil)
}

func (r *Run) execute(ctx context.Context, em *emitter) (Status, error) {
	o := r.o
	ctx = services.WithRunID(ctx, r.ID)
	logger := logging.WithContext(ctx, o.logger)
	req := r.req

	if strings.TrimSpace(req.AudioPath) == "" {
		em.emit(msgNoAudio)
		return StatusRejected, rejected("validate", msgNoAudio, services.ErrValidation)
	}

	rawName := req.Name
	if rawName == "" {
		rawName = defaultProjectName
	}
	name := textutil.SanitizeProjectName(rawName)
	if name == "" {
		em.emit(msgInvalidName)
		return StatusRejected, rejected("validate", msgInvalidName, services.ErrValidation)
	}

	if !isSupportedAudioExt(req.AudioPath) {
		em.emit(msgUnsupportedExt)
		return StatusRejected, rejected("validate", msgUnsupportedExt, services.ErrValidation)
	}
	kind, err := filetype.MatchFile(req.AudioPath)
	if err != nil {
		msg := "Error: Could not read the music file: " + err.Error()
		em.emit(msg)
		return StatusRejected, services.Wrap(services.ErrValidation, "pipeline", "validate", "read audio", err)
	}
	if kind != filetype.Unknown && kind.MIME.Type != "audio" {
		logger.Warn("rejected non-audio upload",
			logging.String("audio", req.AudioPath),
			logging.String("detected", kind.MIME.Value),
		)
		em.emit(msgUnsupportedExt)
		return StatusRejected, rejected("validate", msgUnsupportedExt, services.ErrValidation)
	}

	current, err := o.settings.Load()
	if err != nil {
		em.emit("Error: Could not load settings: " + err.Error())
		return StatusRejected, services.Wrap(services.ErrConfiguration, "pipeline", "load settings", "", err)
	}
	if missing := current.MissingRequired(); len(missing) > 0 {
		msg := fmt.Sprintf(msgMissingKeys, strings.Join(missing, ", "))
		em.emit(msg)
		return StatusRejected, rejected("validate", msg, services.ErrConfiguration)
	}

	provider := current.Provider()
	mode := req.LipSync
	if mode == "" {
		mode = driver.LipSyncNone
	}
	if mode != driver.LipSyncNone && !provider.SupportsLipSync() {
		logger.Warn("lip-sync not available for provider; downgrading",
			logging.String("provider", provider.String()),
			logging.String("requested", string(mode)),
		)
		em.emit(msgLipSyncDowngrade)
		mode = driver.LipSyncNone
	}
	resolution := driver.NormalizeResolution(string(req.Resolution))

	r.mu.Lock()
	r.project, r.lipSync = name, mode
	r.mu.Unlock()

	ctx = services.WithProject(ctx, name)
	logger = logging.WithContext(ctx, o.logger)

	// Nothing under the results root is written before the lock is held.
	release, err := o.guard.Lock(ctx)
	if err != nil {
		if errors.Is(err, services.ErrBusy) {
			em.emit(msgBusy)
		} else {
			em.emit("Error: " + err.Error())
		}
		logger.Error("pipeline rejected", logging.Error(err))
		return StatusRejected, err
	}
	defer release()

	if _, err := o.projects.Ensure(name); err != nil {
		em.emit("Error: " + err.Error())
		return StatusRejected, err
	}
	dest := o.projects.AudioPath(name)
	if err := fileutil.CopyFile(req.AudioPath, dest); err != nil {
		em.emit("Error: Could not copy the music file: " + err.Error())
		return StatusRejected, fmt.Errorf("copy audio: %w", err)
	}

	em.emit("=== AutoMV Pipeline ===\n" +
		"Provider: " + provider.String() + "\n" +
		"Music: " + name + "\n" +
		"Lip-sync: " + mode.Label() + "\n" +
		"Resolution: " + string(resolution) + "\n" +
		"Audio copied to: " + dest + "\n\n")

	logger.Info("pipeline run started",
		logging.String("provider", provider.String()),
		logging.String("lip_sync", string(mode)),
		logging.String("resolution", string(resolution)),
	)

	started := time.Now()
	env := o.childEnv(os.Environ(), current)
	var (
		status   Status
		stageErr error
	)
	guardErr := o.guard.Patch(ctx, name, func(ctx context.Context) error {
		status, stageErr = r.runStages(ctx, em, name, mode, resolution, env)
		return nil
	})

	if status == "" {
		// The guard failed before any stage ran.
		if ctx.Err() != nil {
			return StatusCancelled, ctx.Err()
		}
		em.emit("Error: " + guardErr.Error())
		logger.Error("pipeline rejected", logging.Error(guardErr))
		return StatusRejected, guardErr
	}
	if guardErr != nil {
		em.emit("\nWarning: config.py could not be restored: " + guardErr.Error() + "\n")
	}

	err = errors.Join(stageErr, guardErr)
	logger.Info("pipeline run finished",
		logging.String("status", string(status)),
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("elapsed", time.Since(started).Round(time.Second)),
	)
	r.notify(context.WithoutCancel(ctx), logger, status, err, time.Since(started))
	return status, err
}

// notify reports runs that reached the stages. Cancelled runs were stopped by
// the user and stay quiet.
func (r *Run) notify(ctx context.Context, logger *slog.Logger, status Status, runErr error, elapsed time.Duration) {
	var err error
	switch status {
	case StatusCompleted:
		err = r.o.notifier.NotifyRunCompleted(ctx, r.Project(), r.VideoPath(), elapsed)
	case StatusCancelled:
		return
	default:
		err = r.o.notifier.NotifyRunFailed(ctx, r.Project(), string(status), runErr)
	}
	if err != nil {
		logger.Warn("run notification failed", logging.Error(err))
	}
}

func (r *Run) runStages(ctx context.Context, em *emitter, name string, mode driver.LipSyncMode, resolution driver.Resolution, env []string) (Status, error) {
	o := r.o

	em.emit("--- Stage 1: Picture Generation ---\n" +
		"Running SongFormer analysis + image generation...\n")
	if status, err := r.runStage(ctx, em, 1, o.stage1Command(env)); err != nil {
		return status, err
	}
	em.emit("\nStage 1 complete.\n\n")

	em.emit("--- Stage 2: Video Generation ---\n")
	driverPath := o.cfg.DriverPath()
	if err := os.WriteFile(driverPath, []byte(driver.Build(name, mode, resolution)), 0o644); err != nil {
		em.emit(fmt.Sprintf("\nStage 2 failed to start: %v\n", err))
		return StatusStage2Failed, services.Wrap(services.ErrExternalTool, "pipeline", "stage2", "write driver", err)
	}
	defer func() {
		if err := os.Remove(driverPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("failed to remove stage 2 driver", logging.String("path", driverPath), logging.Error(err))
		}
	}()
	em.emit("Generating video clips and assembling final MV...\n")

	if status, err := r.runStage(ctx, em, 2, o.stage2Command(env)); err != nil {
		return status, err
	}

	video := o.projects.VideoPath(name)
	if fileutil.Exists(video) {
		r.mu.Lock()
		r.videoPath = video
		r.mu.Unlock()
		em.emit("\nDone! Final video: " + video + "\n")
	} else {
		em.emit("\nPipeline finished but final video not found. Check logs above.\n")
	}
	return StatusCompleted, nil
}

func (r *Run) runStage(ctx context.Context, em *emitter, n int, cmd Command) (Status, error) {
	o := r.o
	stage := fmt.Sprintf("stage%d", n)
	failed := StatusStage1Failed
	if n == 2 {
		failed = StatusStage2Failed
	}

	stageCtx := services.WithStage(ctx, stage)
	if timeout := o.cfg.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}
	logger := logging.WithContext(stageCtx, o.logger)
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("command", cmd.String()),
	)

	started := time.Now()
	err := o.exec.Run(stageCtx, cmd, func(line string) {
		em.emit(line + "\n")
	})
	elapsed := time.Since(started).Round(time.Millisecond)

	if err == nil {
		logger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("elapsed", elapsed),
		)
		return "", nil
	}

	var exitErr *ExitError
	switch {
	case ctx.Err() != nil:
		em.emit(fmt.Sprintf("\nStage %d cancelled\n", n))
		logStageFailure(logger, "stage cancelled", elapsed, err)
		return StatusCancelled, ctx.Err()
	case errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		em.emit(fmt.Sprintf("\nStage %d timed out after %s\n", n, o.cfg.StageTimeout()))
		logStageFailure(logger, "stage timed out", elapsed, err)
		return failed, services.Wrap(services.ErrExternalTool, "pipeline", stage, "timed out", context.DeadlineExceeded)
	case errors.As(err, &exitErr):
		em.emit(fmt.Sprintf("\nStage %d failed with exit code %d\n", n, exitErr.Code))
		logStageFailure(logger, "stage failed", elapsed, err)
		return failed, services.Wrap(services.ErrExternalTool, "pipeline", stage, "", err)
	default:
		em.emit(fmt.Sprintf("\nStage %d failed to start: %v\n", n, err))
		logStageFailure(logger, "stage failed to start", elapsed, err)
		return failed, services.Wrap(services.ErrExternalTool, "pipeline", stage, "start", err)
	}
}

func logStageFailure(logger *slog.Logger, msg string, elapsed time.Duration, err error) {
	logger.Error(msg,
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Duration("elapsed", elapsed),
		logging.Error(err),
	)
}
