package settings_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automv/internal/services"
	"automv/internal/settings"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), ".env"))
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got.Values()) != 0 {
		t.Fatalf("expected empty settings, got %v", got.Values())
	}
	if got.Provider() != settings.ProviderBytePlus {
		t.Fatalf("expected default provider, got %q", got.Provider())
	}
	if got.Ready() {
		t.Fatal("expected empty settings to be not ready")
	}
}

func TestSaveDefaultsProviderAndReportsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo", ".env")
	store := settings.NewStore(path)

	report, err := store.Save("  ", map[string]string{
		"GEMINI_API_KEY": "  gem  ",
		"DOUBAO_API_KEY": "",
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	for _, fragment := range []string{
		"Provider: byteplus",
		"Configured: 1/7 API keys",
		"Missing: Ark API Key (BytePlus or Volcengine), Aliyun OSS Access Key ID",
		"Note: Lip-sync (Jimeng) requires Volcengine (China).",
	} {
		if !strings.Contains(report, fragment) {
			t.Fatalf("expected %q in report:\n%s", fragment, report)
		}
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Get("GEMINI_API_KEY") != "gem" {
		t.Fatalf("expected trimmed value, got %q", loaded.Get("GEMINI_API_KEY"))
	}
	if _, ok := loaded.Values()["DOUBAO_API_KEY"]; ok {
		t.Fatal("blank input must not be written")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat env: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestSaveBlankLeavesExistingValueAndUnrelatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DOUBAO_API_KEY=keep-me\nCUSTOM_FLAG=yes\n"), 0o644); err != nil {
		t.Fatalf("seed env: %v", err)
	}
	store := settings.NewStore(path)

	report, err := store.Save("volcengine", map[string]string{
		"DOUBAO_API_KEY": "   ",
		"GEMINI_API_KEY": "g",
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if strings.Contains(report, "Note:") {
		t.Fatalf("volcengine supports lip-sync, unexpected note:\n%s", report)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Get("DOUBAO_API_KEY") != "keep-me" {
		t.Fatalf("expected existing value retained, got %q", loaded.Get("DOUBAO_API_KEY"))
	}
	if loaded.Get("CUSTOM_FLAG") != "yes" {
		t.Fatalf("expected unrelated key retained, got %q", loaded.Get("CUSTOM_FLAG"))
	}
	if loaded.Provider() != settings.ProviderVolcengine {
		t.Fatalf("expected volcengine, got %q", loaded.Provider())
	}
	if !loaded.Ready() {
		t.Fatalf("expected ready settings, missing %v", loaded.MissingRequired())
	}
}

func TestSaveEditsKeysInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	seed := "# AutoMV credentials\n" +
		"GEMINI_API_KEY=old\n" +
		"\n" +
		"CUSTOM_FLAG=yes # keep\n" +
		"GEMINI_API_KEY=dup"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("seed env: %v", err)
	}

	if _, err := settings.NewStore(path).Save("volcengine", map[string]string{
		"GEMINI_API_KEY": "new",
		"DOUBAO_API_KEY": "d",
	}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read env: %v", err)
	}
	want := "# AutoMV credentials\n" +
		"GEMINI_API_KEY=\"new\"\n" +
		"\n" +
		"CUSTOM_FLAG=yes # keep\n" +
		"ARK_PROVIDER=\"volcengine\"\n" +
		"DOUBAO_API_KEY=\"d\"\n"
	if string(got) != want {
		t.Fatalf("unexpected env file:\n%s\nwant:\n%s", got, want)
	}
}

func TestSaveRejectsUnknownInputs(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), ".env"))
	if _, err := store.Save("aws", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown provider, got %v", err)
	}
	if _, err := store.Save("", map[string]string{"GEMINI_KEY": "x"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown key, got %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("rejected save must not create the file, stat err=%v", err)
	}
}

func TestStatusListsEveryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ARK_PROVIDER=nonsense\nGEMINI_API_KEY=x\n"), 0o600); err != nil {
		t.Fatalf("seed env: %v", err)
	}
	status, err := settings.NewStore(path).Status()
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	lines := strings.Split(status, "\n")
	if len(lines) != len(settings.APIKeys)+1 {
		t.Fatalf("expected %d lines, got %d:\n%s", len(settings.APIKeys)+1, len(lines), status)
	}
	if lines[0] != "  Provider: byteplus" {
		t.Fatalf("unrecognized provider should read as default, got %q", lines[0])
	}
	if lines[1] != "  Gemini API Key (Google): set" {
		t.Fatalf("unexpected gemini line %q", lines[1])
	}
	if lines[2] != "  Ark API Key (BytePlus or Volcengine): MISSING" {
		t.Fatalf("unexpected ark line %q", lines[2])
	}
}

func TestEnvironAndDefaults(t *testing.T) {
	s := settings.New(map[string]string{"B": "2", "A": "1"})
	env := s.Environ()
	if len(env) != 2 || env[0] != "A=1" || env[1] != "B=2" {
		t.Fatalf("unexpected environ %v", env)
	}
	key, ok := settings.LookupKey("MODEL_SEEDANCE")
	if !ok {
		t.Fatal("expected MODEL_SEEDANCE in catalog")
	}
	if s.Value(key) != "seedance-1-0-pro-250528" {
		t.Fatalf("expected default model id, got %q", s.Value(key))
	}
}

func TestProviderFeatureMatrix(t *testing.T) {
	if settings.ProviderBytePlus.SupportsLipSync() {
		t.Fatal("byteplus must not support lip-sync")
	}
	if !settings.ProviderVolcengine.SupportsLipSync() {
		t.Fatal("volcengine must support lip-sync")
	}
	if settings.ParseProvider(" VolcEngine ") != settings.ProviderVolcengine {
		t.Fatal("expected case-insensitive parse")
	}
	if settings.ParseProvider("") != settings.ProviderBytePlus {
		t.Fatal("expected default for blank selector")
	}
}
