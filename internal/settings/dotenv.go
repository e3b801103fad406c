package settings

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

var assignmentLine = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*=`)

// setKeys edits a dotenv document in place. The first assignment of each
// updated key is rewritten where it stands and later duplicates are dropped;
// keys not yet present are appended in sorted order. Comments, blank lines
// and every other line are kept byte for byte.
func setKeys(doc []byte, updates map[string]string) ([]byte, error) {
	pending := make(map[string]string, len(updates))
	for key, value := range updates {
		pending[key] = value
	}
	written := make(map[string]bool, len(updates))

	var out bytes.Buffer
	text := string(doc)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		m := assignmentLine.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			continue
		}
		key := m[1]
		if written[key] {
			continue
		}
		value, ok := pending[key]
		if !ok {
			out.WriteString(line)
			continue
		}
		formatted, err := formatAssignment(key, value)
		if err != nil {
			return nil, err
		}
		out.WriteString(formatted)
		written[key] = true
		delete(pending, key)
	}

	remaining := make([]string, 0, len(pending))
	for key := range pending {
		remaining = append(remaining, key)
	}
	sort.Strings(remaining)
	for _, key := range remaining {
		formatted, err := formatAssignment(key, pending[key])
		if err != nil {
			return nil, err
		}
		out.WriteString(formatted)
	}
	return out.Bytes(), nil
}

func formatAssignment(key, value string) (string, error) {
	line, err := godotenv.Marshal(map[string]string{key: value})
	if err != nil {
		return "", err
	}
	return line + "\n", nil
}
