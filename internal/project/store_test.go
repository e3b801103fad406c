package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"automv/internal/project"
	"automv/internal/services"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListMissingRootIsEmpty(t *testing.T) {
	store := project.NewStore(filepath.Join(t.TempDir(), "result"), nil)
	names, err := store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", names)
	}
}

func TestListSortsDirectoriesOnly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "Mid_1"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(root, "notes.txt"), "x")

	names, err := project.NewStore(root, nil).List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"Mid_1", "alpha", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
}

func TestLoadStoryboardWithoutCharacters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "song", "story.json"), `[
		{"number": 1, "start": 0, "end": 12.34, "label": "verse", "text": "hello", "story": "a street"},
		{"number": "2", "start": 12.34, "end": 20}
	]`)

	view, err := project.NewStore(root, nil).Load("song")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := "**#1** [0.0s - 12.3s] (verse)\nLyrics: hello\nScene: a street\n" +
		"\n---\n" +
		"**#2** [12.3s - 20.0s] (unknown)\nLyrics: N/A\nScene: N/A\n"
	if view.Storyboard != want {
		t.Fatalf("storyboard mismatch:\n got %q\nwant %q", view.Storyboard, want)
	}
	if len(view.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(view.Segments))
	}
	if view.Characters != project.NoCharacterData {
		t.Fatalf("expected %q, got %q", project.NoCharacterData, view.Characters)
	}
	if view.VideoPath != "" {
		t.Fatalf("expected no video, got %q", view.VideoPath)
	}
	if len(view.Keyframes) != 0 {
		t.Fatalf("expected no keyframes, got %v", view.Keyframes)
	}
}

func TestLoadCharactersKeepDocumentOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "song", "label.json"), `{
		"style_requirement": "watercolor",
		"character_depiction": {
			"zoe": {"name": "Zoe", "gender": "female", "age": 24, "appearance": "red coat", "role": "lead"},
			"adam": {"gender": "male"}
		}
	}`)

	view, err := project.NewStore(root, nil).Load("song")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := "**Style:** watercolor\n" +
		"\n---\n" +
		"**Zoe** — female, 24\nAppearance: red coat\nRole: lead\n" +
		"\n---\n" +
		"**adam** — male, ?\nAppearance: N/A\nRole: N/A\n"
	if view.Characters != want {
		t.Fatalf("characters mismatch:\n got %q\nwant %q", view.Characters, want)
	}
	if view.Storyboard != project.NoStoryboard {
		t.Fatalf("expected %q, got %q", project.NoStoryboard, view.Storyboard)
	}
}

func TestLoadPlaceholders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "empty", "story.json"), `[]`)
	writeFile(t, filepath.Join(root, "empty", "label.json"), `{}`)
	writeFile(t, filepath.Join(root, "broken", "story.json"), `[{`)

	store := project.NewStore(root, nil)

	view, err := store.Load("empty")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if view.Storyboard != project.EmptyStoryboard {
		t.Fatalf("expected %q, got %q", project.EmptyStoryboard, view.Storyboard)
	}
	if view.Characters != project.NoCharactersDefined {
		t.Fatalf("expected %q, got %q", project.NoCharactersDefined, view.Characters)
	}

	view, err = store.Load("broken")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(view.Storyboard, "Storyboard unreadable: ") {
		t.Fatalf("expected unreadable placeholder, got %q", view.Storyboard)
	}
	if view.Characters != project.NoCharacterData {
		t.Fatalf("expected %q, got %q", project.NoCharacterData, view.Characters)
	}

	view, err = store.Load("  ")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if view.Storyboard != project.NoProjectSelected || view.Characters != project.NoProjectSelected {
		t.Fatalf("expected no-project placeholders, got %+v", view)
	}
}

func TestLoadVideoAndKeyframes(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "song")
	writeFile(t, filepath.Join(dir, "mv_song.mp4"), "video")
	writeFile(t, filepath.Join(dir, "picture", "2", "b.PNG"), "img")
	writeFile(t, filepath.Join(dir, "picture", "1", "z.jpg"), "img")
	writeFile(t, filepath.Join(dir, "picture", "1", "a.jpeg"), "img")
	writeFile(t, filepath.Join(dir, "picture", "1", "notes.txt"), "skip")

	view, err := project.NewStore(root, nil).Load("song")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if view.VideoPath != filepath.Join(dir, "mv_song.mp4") {
		t.Fatalf("unexpected video path %q", view.VideoPath)
	}
	want := []string{
		filepath.Join(dir, "picture", "1", "a.jpeg"),
		filepath.Join(dir, "picture", "1", "z.jpg"),
		filepath.Join(dir, "picture", "2", "b.PNG"),
	}
	if !reflect.DeepEqual(view.Keyframes, want) {
		t.Fatalf("keyframes = %v, want %v", view.Keyframes, want)
	}
}

func TestInvalidNamesRejected(t *testing.T) {
	store := project.NewStore(t.TempDir(), nil)
	for _, name := range []string{"../etc", "..", ".", "x/y", "/abs"} {
		if _, err := store.Load(name); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Load(%q) expected validation error, got %v", name, err)
		}
		if store.Exists(name) {
			t.Fatalf("Exists(%q) = true", name)
		}
	}
	for _, name := range []string{"../etc", "a b", "x/y", "my-song"} {
		if _, err := store.Ensure(name); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Ensure(%q) expected validation error, got %v", name, err)
		}
	}
}

func TestEveryListedProjectLoads(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"my-song", "café", "a b", "Mid_1"} {
		writeFile(t, filepath.Join(root, name, "story.json"), `[{"start":0,"end":1,"content":"x"}]`)
	}
	store := project.NewStore(root, nil)

	names, err := store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(names) != 4 {
		t.Fatalf("List = %v", names)
	}
	for _, name := range names {
		view, err := store.Load(name)
		if err != nil {
			t.Fatalf("Load(%q) returned error: %v", name, err)
		}
		if view.Name != name || view.Dir != filepath.Join(root, name) {
			t.Fatalf("Load(%q) = name %q dir %q", name, view.Name, view.Dir)
		}
		if len(view.Segments) != 1 {
			t.Fatalf("Load(%q) did not read the storyboard: %q", name, view.Storyboard)
		}
		if !store.Exists(name) {
			t.Fatalf("Exists(%q) = false", name)
		}
	}
}

func TestEnsureAndPaths(t *testing.T) {
	root := t.TempDir()
	store := project.NewStore(root, nil)
	dir, err := store.Ensure("My_Song")
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if dir != filepath.Join(root, "My_Song") {
		t.Fatalf("unexpected dir %q", dir)
	}
	if !store.Exists("My_Song") {
		t.Fatal("expected project to exist")
	}
	if got := store.AudioPath("My_Song"); got != filepath.Join(root, "My_Song", "My_Song.mp3") {
		t.Fatalf("unexpected audio path %q", got)
	}
	if got := store.VideoPath("My_Song"); got != filepath.Join(root, "My_Song", "mv_My_Song.mp4") {
		t.Fatalf("unexpected video path %q", got)
	}
}
