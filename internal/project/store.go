package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"automv/internal/logging"
	"automv/internal/services"
	"automv/internal/textutil"
)

// Placeholders shown when a section cannot be produced.
const (
	NoProjectSelected   = "No project selected"
	NoStoryboard        = "No storyboard found."
	EmptyStoryboard     = "Empty storyboard."
	NoCharacterData     = "No character data found."
	NoCharactersDefined = "No characters defined."
)

const (
	storyFile   = "story.json"
	labelFile   = "label.json"
	pictureDir  = "picture"
	audioSuffix = ".mp3"
)

var keyframeExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// View is everything the results browser shows for one project.
type View struct {
	Name       string
	Dir        string
	VideoPath  string
	Storyboard string
	Characters string
	Keyframes  []string
	Segments   []Segment
	Sheet      *CharacterSheet
}

// Store enumerates and loads projects under the results root.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore binds a store to the results root. The root need not exist.
func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logging.NewComponentLogger(logger, "projects")}
}

// Root returns the results directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory owned by a sanitized project name.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// AudioPath returns the canonical location of a project's copied audio.
func (s *Store) AudioPath(name string) string {
	return filepath.Join(s.Dir(name), name+audioSuffix)
}

// VideoPath returns where stage 2 writes the final music video.
func (s *Store) VideoPath(name string) string {
	return filepath.Join(s.Dir(name), "mv_"+name+".mp4")
}

// Ensure creates the project directory if needed.
func (s *Store) Ensure(name string) (string, error) {
	if !textutil.IsProjectName(name) {
		return "", services.Wrap(services.ErrValidation, "projects", "ensure",
			fmt.Sprintf("invalid project name %q", name), nil)
	}
	dir := s.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project directory: %w", err)
	}
	return dir, nil
}

// List returns project names sorted lexicographically. A missing root yields
// an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read results directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the project directory is present.
func (s *Store) Exists(name string) bool {
	if !isChildName(name) {
		return false
	}
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// isChildName reports whether name addresses a direct child of the results
// root. Directories created outside automv keep their own names, so anything
// List returns passes; only names that would leave the root are refused.
func isChildName(name string) bool {
	return name != "." && filepath.IsLocal(name) && filepath.Base(name) == name
}

// Load resolves each section of a project independently. Missing or
// unreadable documents produce placeholder text for that section only.
func (s *Store) Load(name string) (View, error) {
	if strings.TrimSpace(name) == "" {
		return View{Storyboard: NoProjectSelected, Characters: NoProjectSelected}, nil
	}
	if !isChildName(name) {
		return View{}, services.Wrap(services.ErrValidation, "projects", "load",
			fmt.Sprintf("invalid project name %q", name), nil)
	}

	dir := s.Dir(name)
	view := View{
		Name:       name,
		Dir:        dir,
		Storyboard: NoStoryboard,
		Characters: NoCharacterData,
	}

	if info, err := os.Stat(s.VideoPath(name)); err == nil && !info.IsDir() {
		view.VideoPath = s.VideoPath(name)
	}

	var segments []Segment
	switch found, err := readJSON(filepath.Join(dir, storyFile), &segments); {
	case err != nil:
		s.logger.Warn("storyboard unreadable", logging.String(logging.FieldProject, name), logging.Error(err))
		view.Storyboard = "Storyboard unreadable: " + err.Error()
	case found:
		view.Segments = segments
		view.Storyboard = FormatStoryboard(segments)
	}

	var sheet CharacterSheet
	switch found, err := readJSON(filepath.Join(dir, labelFile), &sheet); {
	case err != nil:
		s.logger.Warn("character sheet unreadable", logging.String(logging.FieldProject, name), logging.Error(err))
		view.Characters = "Character data unreadable: " + err.Error()
	case found:
		view.Sheet = &sheet
		view.Characters = FormatCharacters(sheet)
	}

	keyframes, err := collectKeyframes(filepath.Join(dir, pictureDir))
	if err != nil {
		s.logger.Warn("keyframes unreadable", logging.String(logging.FieldProject, name), logging.Error(err))
	}
	view.Keyframes = keyframes

	return view, nil
}

func readJSON(path string, dst any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// collectKeyframes walks picture/<segment>/ in sorted order and keeps images.
func collectKeyframes(root string) ([]string, error) {
	segments, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return []string{}, err
	}
	keyframes := []string{}
	for _, seg := range segments {
		if !seg.IsDir() {
			continue
		}
		segDir := filepath.Join(root, seg.Name())
		files, err := os.ReadDir(segDir)
		if err != nil {
			return keyframes, err
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if _, ok := keyframeExtensions[strings.ToLower(filepath.Ext(f.Name()))]; ok {
				keyframes = append(keyframes, filepath.Join(segDir, f.Name()))
			}
		}
	}
	return keyframes, nil
}
