// Package deps checks that the binaries AutoMV shells out to are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement resolved on this host.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// PipelineRequirements lists what a pipeline run needs: the configured python
// interpreter, plus ffmpeg which AutoMV's assembly step calls itself.
func PipelineRequirements(pythonBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "Python",
			Command:     pythonBinary,
			Description: "Runs both AutoMV stages",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Used by AutoMV to cut and assemble clips",
			Optional:    true,
		},
	}
}

// CheckBinaries resolves each requirement on PATH (or as given, when the
// command contains a path separator).
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		switch path, err := exec.LookPath(req.Command); {
		case req.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		default:
			status.Path = path
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
