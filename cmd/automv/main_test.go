package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"automv/internal/config"
	"automv/internal/pipeline"
	"automv/internal/settings"
	"automv/internal/testsupport"
)

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "automv.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "automv.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}

	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	out, _, err = runCLI(t, []string{"config", "validate"}, path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, cfg.Paths.RepoDir) {
		t.Fatalf("unexpected validate output %q", out)
	}
}

func TestSettingsSetAndShow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"settings", "set", "--provider", "volcengine", "GEMINI_API_KEY=g-secret"}, path)
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	if !strings.Contains(out, "Updated: GEMINI_API_KEY") || !strings.Contains(out, "Configured: 1/7 API keys") {
		t.Fatalf("unexpected set output %q", out)
	}

	// Omitting --provider keeps the stored selector.
	if _, _, err := runCLI(t, []string{"settings", "set", "DOUBAO_API_KEY=d-secret"}, path); err != nil {
		t.Fatalf("settings set second key: %v", err)
	}
	current, err := settings.NewStore(cfg.Paths.EnvFile).Load()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if current.Provider() != settings.ProviderVolcengine || current.Get("GEMINI_API_KEY") != "g-secret" {
		t.Fatalf("unexpected stored settings %v", current.Values())
	}

	out, _, err = runCLI(t, []string{"settings", "show"}, path)
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("settings show leaked a value: %q", out)
	}
	for _, fragment := range []string{"Provider: volcengine", "GEMINI_API_KEY", "seedream-4-0-250828", "Ready to generate"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("settings show missing %q:\n%s", fragment, out)
		}
	}
}

func TestSettingsSetRejectsBadInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"settings", "set", "NOT_AN_ASSIGNMENT"}, path); err == nil {
		t.Fatal("expected malformed assignment to fail")
	}
	if _, _, err := runCLI(t, []string{"settings", "set", "UNKNOWN_KEY=1"}, path); err == nil {
		t.Fatal("expected unknown key to fail")
	}
}

func TestSettingsSetFromFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	source := filepath.Join(t.TempDir(), "keys.env")
	if err := os.WriteFile(source, []byte("ARK_PROVIDER=volcengine\nGEMINI_API_KEY=a\nDOUBAO_API_KEY=b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"settings", "set", "--from-file", source}, path); err != nil {
		t.Fatalf("settings set --from-file: %v", err)
	}
	current, err := settings.NewStore(cfg.Paths.EnvFile).Load()
	if err != nil {
		t.Fatal(err)
	}
	if !current.Ready() || current.Provider() != settings.ProviderVolcengine {
		t.Fatalf("unexpected settings after import %v", current.Values())
	}
}

func TestProjectsListAndShow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	songDir := filepath.Join(cfg.Paths.ResultsDir, "song")
	testsupport.WriteBytes(t, filepath.Join(songDir, "story.json"),
		[]byte(`[{"number":1,"start":0,"end":2.5,"label":"verse","text":"hello","story":"a street"}]`))
	testsupport.WriteBytes(t, filepath.Join(songDir, "picture", "1", "frame.png"), testsupport.PNGHeader)
	testsupport.WriteBytes(t, filepath.Join(songDir, "mv_song.mp4"), []byte("video"))

	out, _, err := runCLI(t, []string{"projects", "list"}, path)
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if !strings.Contains(out, "song") || !strings.Contains(out, "mv_song.mp4") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"projects", "show", "song"}, path)
	if err != nil {
		t.Fatalf("projects show: %v", err)
	}
	for _, fragment := range []string{"== Storyboard ==", "**#1** [0.0s - 2.5s] (verse)", "frame.png", "mv_song.mp4"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("projects show missing %q:\n%s", fragment, out)
		}
	}

	if _, _, err := runCLI(t, []string{"projects", "show", "absent"}, path); err == nil {
		t.Fatal("expected missing project to fail")
	}
}

func TestProjectsListEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	out, _, err := runCLI(t, []string{"projects", "list"}, path)
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if !strings.Contains(out, "No projects under") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPatchDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"patch", "--dry-run"}, path)
	if err != nil {
		t.Fatalf("patch --dry-run: %v", err)
	}
	if !strings.Contains(out, "  [PATCHED] config.py") || !strings.Contains(out, "  [SKIP] picture_generate/picture.py not found") {
		t.Fatalf("unexpected patch output:\n%s", out)
	}
	data, err := os.ReadFile(cfg.ExternalConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != testsupport.AutoMVConfig {
		t.Fatal("dry run modified config.py")
	}

	out, _, err = runCLI(t, []string{"patch"}, path)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !strings.Contains(out, "Applying BytePlus patches") || !strings.Contains(out, "Done.") {
		t.Fatalf("unexpected patch output:\n%s", out)
	}
	out, _, err = runCLI(t, []string{"patch"}, path)
	if err != nil {
		t.Fatalf("second patch: %v", err)
	}
	if !strings.Contains(out, "  [OK] config.py already patched") {
		t.Fatalf("expected idempotent second run:\n%s", out)
	}
}

func TestPatchMissingRepo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.RepoDir = filepath.Join(testsupport.BaseDir(cfg), "absent")
	path := writeTestConfig(t, cfg)
	if _, _, err := runCLI(t, []string{"patch"}, path); err == nil {
		t.Fatal("expected missing repo to fail")
	}
}

func TestDoctorReportsMissingCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedPython(`echo "Python 3.10.14"`))
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"doctor"}, path)
	if err == nil {
		t.Fatal("expected doctor to fail without credentials")
	}
	for _, fragment := range []string{"== Readiness ==", "AutoMV checkout:", "[ERROR]", "== Dependencies =="} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("doctor output missing %q:\n%s", fragment, out)
		}
	}
}

const stubStages = `echo "stub $*"
case "$1" in
  *.py) mkdir -p result/song && : > result/song/mv_song.mp4 ;;
esac`

func TestGenerateRunsBothStages(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithCredentials(settings.ProviderVolcengine),
		testsupport.WithStubbedPython(stubStages),
	)
	path := writeTestConfig(t, cfg)
	audio := filepath.Join(t.TempDir(), "track.mp3")
	testsupport.WriteFile(t, audio, 256)

	out, _, err := runCLI(t, []string{"generate", "--audio", audio, "--name", "song", "--lip-sync", "jimeng"}, path)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	for _, fragment := range []string{
		"=== AutoMV Pipeline ===",
		"Lip-sync: Jimeng (fast)",
		"Resolution: 480p",
		"stub -m picture_generate.main",
		"Stage 1 complete.",
		"stub " + cfg.Pipeline.DriverFile,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("generate output missing %q:\n%s", fragment, out)
		}
	}
	if _, err := os.Stat(cfg.DriverPath()); !os.IsNotExist(err) {
		t.Fatalf("driver file left behind: %v", err)
	}
	data, err := os.ReadFile(cfg.ExternalConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != testsupport.AutoMVConfig {
		t.Fatalf("config.py not restored:\n%s", data)
	}
}

func TestGenerateRejectedExitsNonZero(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	audio := filepath.Join(t.TempDir(), "track.mp3")
	testsupport.WriteFile(t, audio, 64)

	out, _, err := runCLI(t, []string{"generate", "--audio", audio}, path)
	var runErr *runFailedError
	if !errors.As(err, &runErr) || runErr.status != pipeline.StatusRejected {
		t.Fatalf("expected rejected run error, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode(err))
	}
	if !strings.Contains(out, "Required API keys not configured") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGenerateRejectsUnknownLipSync(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	if _, _, err := runCLI(t, []string{"generate", "--audio", "x.mp3", "--lip-sync", "sora"}, path); err == nil {
		t.Fatal("expected unknown lip-sync mode to fail")
	}
}

func TestExitCodeForCancelledRun(t *testing.T) {
	err := &runFailedError{status: pipeline.StatusCancelled, cancelled: true, err: context.Canceled}
	if exitCode(err) != 130 {
		t.Fatalf("expected 130, got %d", exitCode(err))
	}
	if exitCode(errors.New("boom")) != 1 {
		t.Fatal("expected generic errors to exit 1")
	}
}

func TestLogsCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	testsupport.WriteBytes(t, cfg.LogFile(), []byte("first\nsecond\nthird\n"))

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, path)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "second\nthird\n" {
		t.Fatalf("unexpected logs output %q", out)
	}
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	if _, _, err := runCLI(t, []string{"test-notify"}, path); err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}
}
