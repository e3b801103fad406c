package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automv/internal/pipeline"
	"automv/internal/project"
	"automv/internal/settings"
	"automv/internal/testsupport"
)

const stubPython = `if [ "$1" = "-m" ]; then
  echo "stage one on stdout"
  echo "stage one on stderr" 1>&2
  grep music_name config.py
  exit 0
fi
cat "$1"
mkdir -p result/song
: > result/song/mv_song.mp4
echo "assembled" 1>&2`

func TestRealProcessesStreamMergedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithCredentials(settings.ProviderVolcengine),
		testsupport.WithStubbedPython(stubPython),
	)
	orch := pipeline.New(cfg, settings.NewStore(cfg.Paths.EnvFile), project.NewStore(cfg.Paths.ResultsDir, nil), nil)

	run := orch.Start(pipeline.Request{AudioPath: writeAudio(t, cfg, "a.mp3"), Name: "song"})
	status, err := run.Wait(context.Background())
	if status != pipeline.StatusCompleted {
		t.Fatalf("status = %s, err = %v\n%s", status, err, run.Transcript())
	}

	log := run.Transcript()
	for _, fragment := range []string{
		"stage one on stdout\nstage one on stderr\n",
		`    music_name = "song"` + "\n",
		"full_video_gen(\"song\", resolution=\"720p\", config=Config)\n",
		"assembled\n",
		"Done! Final video: " + filepath.Join(cfg.Paths.ResultsDir, "song", "mv_song.mp4"),
	} {
		if !strings.Contains(log, fragment) {
			t.Fatalf("transcript missing %q:\n%s", fragment, log)
		}
	}
	if _, err := os.Stat(cfg.DriverPath()); !os.IsNotExist(err) {
		t.Fatalf("driver file should be removed: %v", err)
	}
	assertConfigRestored(t, cfg)
}

func TestRealProcessExitCode(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithCredentials(settings.ProviderVolcengine),
		testsupport.WithStubbedPython(`echo "cuda out of memory"; exit 3`),
	)
	orch := pipeline.New(cfg, settings.NewStore(cfg.Paths.EnvFile), project.NewStore(cfg.Paths.ResultsDir, nil), nil)

	run := orch.Start(pipeline.Request{AudioPath: writeAudio(t, cfg, "a.mp3"), Name: "song"})
	status, _ := run.Wait(context.Background())
	if status != pipeline.StatusStage1Failed {
		t.Fatalf("status = %s", status)
	}
	if !strings.HasSuffix(run.Transcript(), "cuda out of memory\n\nStage 1 failed with exit code 3\n") {
		t.Fatalf("unexpected transcript:\n%s", run.Transcript())
	}
}

func TestStageTimeoutKillsChild(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithCredentials(settings.ProviderVolcengine),
		testsupport.WithStubbedPython(`echo "starting"; sleep 30`),
		testsupport.WithStageTimeout(1),
	)
	orch := pipeline.New(cfg, settings.NewStore(cfg.Paths.EnvFile), project.NewStore(cfg.Paths.ResultsDir, nil), nil)

	run := orch.Start(pipeline.Request{AudioPath: writeAudio(t, cfg, "a.mp3"), Name: "song"})
	status, _ := run.Wait(context.Background())
	if status != pipeline.StatusStage1Failed {
		t.Fatalf("status = %s\n%s", status, run.Transcript())
	}
	if !strings.HasSuffix(run.Transcript(), "\nStage 1 timed out after 1s\n") {
		t.Fatalf("unexpected transcript:\n%s", run.Transcript())
	}
	assertConfigRestored(t, cfg)
}

func TestMissingPythonReportsStartFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCredentials(settings.ProviderVolcengine))
	cfg.Pipeline.PythonBinary = filepath.Join(testsupport.BaseDir(cfg), "no-such-python")
	orch := pipeline.New(cfg, settings.NewStore(cfg.Paths.EnvFile), project.NewStore(cfg.Paths.ResultsDir, nil), nil)

	run := orch.Start(pipeline.Request{AudioPath: writeAudio(t, cfg, "a.mp3"), Name: "song"})
	status, _ := run.Wait(context.Background())
	if status != pipeline.StatusStage1Failed {
		t.Fatalf("status = %s", status)
	}
	if !strings.Contains(run.Transcript(), "\nStage 1 failed to start: ") {
		t.Fatalf("unexpected transcript:\n%s", run.Transcript())
	}
}
