package settings

import (
	"fmt"
	"sort"
	"strings"
)

// Settings is a snapshot of the .env file.
type Settings struct {
	values map[string]string
}

// New wraps a raw key/value map. The map is copied.
func New(values map[string]string) Settings {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Settings{values: cp}
}

// Get returns the stored value for key, or "" when unset.
func (s Settings) Get(key string) string {
	return s.values[key]
}

// Value returns the stored value, falling back to the key's default.
func (s Settings) Value(k Key) string {
	if v := s.values[k.Name]; v != "" {
		return v
	}
	return k.Default
}

// Provider resolves the selector; unknown values read as DefaultProvider.
func (s Settings) Provider() Provider {
	return ParseProvider(s.values[ProviderKey])
}

// Values returns a copy of the raw map.
func (s Settings) Values() map[string]string {
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// ConfiguredAPIKeys returns the API keys that have a value.
func (s Settings) ConfiguredAPIKeys() []Key {
	var out []Key
	for _, k := range APIKeys {
		if s.values[k.Name] != "" {
			out = append(out, k)
		}
	}
	return out
}

// MissingAPIKeys returns the API keys without a value.
func (s Settings) MissingAPIKeys() []Key {
	var out []Key
	for _, k := range APIKeys {
		if s.values[k.Name] == "" {
			out = append(out, k)
		}
	}
	return out
}

// MissingRequired returns labels of required credentials that are unset.
func (s Settings) MissingRequired() []string {
	var out []string
	for _, k := range APIKeys {
		if k.Required && s.values[k.Name] == "" {
			out = append(out, k.Label)
		}
	}
	return out
}

// Ready reports whether a pipeline run can start.
func (s Settings) Ready() bool {
	return len(s.MissingRequired()) == 0
}

// Environ renders the settings as KEY=value pairs, sorted by key, for
// appending to a child process environment.
func (s Settings) Environ() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+s.values[k])
	}
	return env
}

// Summary is the report returned after a save: provider, configured count,
// missing labels, and the lip-sync note for providers without it.
func (s Settings) Summary() string {
	provider := s.Provider()
	configured := s.ConfiguredAPIKeys()
	missing := s.MissingAPIKeys()

	var b strings.Builder
	b.WriteString("Provider: " + provider.String() + "\n")
	fmt.Fprintf(&b, "Configured: %d/%d API keys", len(configured), len(APIKeys))
	if len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, k := range missing {
			labels = append(labels, k.Label)
		}
		b.WriteString("\nMissing: " + strings.Join(labels, ", "))
	} else {
		b.WriteString("\nAll API keys are set.")
	}
	if !provider.SupportsLipSync() {
		b.WriteString("\n\nNote: Lip-sync (Jimeng) requires Volcengine (China). Set to 'None' if using BytePlus.")
	}
	return b.String()
}

// KeyReport lists every API key as set or MISSING, preceded by the provider.
func (s Settings) KeyReport() string {
	lines := []string{"  Provider: " + s.Provider().String()}
	for _, k := range APIKeys {
		state := "MISSING"
		if s.values[k.Name] != "" {
			state = "set"
		}
		lines = append(lines, "  "+k.Label+": "+state)
	}
	return strings.Join(lines, "\n")
}
