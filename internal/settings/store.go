package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"automv/internal/services"
)

// Store persists Settings in a dotenv file.
type Store struct {
	path string
}

// NewStore binds a store to the given .env path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the .env file. A missing file means nothing is configured yet
// and yields empty settings without error.
func (s *Store) Load() (Settings, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(nil), nil
		}
		return Settings{}, services.Wrap(services.ErrConfiguration, "settings", "load", s.path, err)
	}
	return New(values), nil
}

// Save writes the provider selector and every non-blank value, then returns
// the readiness summary. Keys are edited in place, so comments and unrelated
// lines survive. Blank values leave the stored value untouched; a
// blank provider writes DefaultProvider. Keys outside the known catalog are
// rejected so typos do not silently land in the file.
func (s *Store) Save(provider string, values map[string]string) (string, error) {
	selected := DefaultProvider
	if strings.TrimSpace(provider) != "" {
		p, ok := LookupProvider(provider)
		if !ok {
			return "", services.Wrap(services.ErrValidation, "settings", "save",
				fmt.Sprintf("unknown provider %q (want byteplus or volcengine)", provider), nil)
		}
		selected = p
	}
	for key := range values {
		if _, ok := LookupKey(key); !ok {
			return "", services.Wrap(services.ErrValidation, "settings", "save",
				fmt.Sprintf("unknown setting %q", key), nil)
		}
	}

	doc, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", services.Wrap(services.ErrConfiguration, "settings", "save", s.path, err)
	}
	updates := map[string]string{ProviderKey: string(selected)}
	for key, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			updates[key] = trimmed
		}
	}
	edited, err := setKeys(doc, updates)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "settings", "save", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, edited, 0o600); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "settings", "save", s.path, err)
	}
	// Credentials live here; keep them private to the owner.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return "", fmt.Errorf("restrict settings permissions: %w", err)
	}

	saved, err := s.Load()
	if err != nil {
		return "", err
	}
	return saved.Summary(), nil
}

// Status reports each API key as set or missing.
func (s *Store) Status() (string, error) {
	current, err := s.Load()
	if err != nil {
		return "", err
	}
	return current.KeyReport(), nil
}
