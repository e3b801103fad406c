package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"automv/internal/deps"
	"automv/internal/patcher"
	"automv/internal/settings"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckResultsDirectory accepts a results root that does not exist yet, since
// the first run creates it.
func CheckResultsDirectory(path string) Result {
	const name = "Results directory"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first run)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckWritableFile verifies a file the guard or patcher rewrites in place.
func CheckWritableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStaleBackup flags a config backup left behind by a killed run.
func CheckStaleBackup(backupPath string) Result {
	const name = "Config backup"
	if _, err := os.Stat(backupPath); err == nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s present; the next run restores it", backupPath)}
	}
	return Result{Name: name, Passed: true, Detail: "clean"}
}

// CheckCredentials reports whether the required API keys are saved.
func CheckCredentials(s settings.Settings) Result {
	const name = "API keys"
	if missing := s.MissingRequired(); len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d/%d configured (provider %s)", len(s.ConfiguredAPIKeys()), len(settings.APIKeys), s.Provider()),
	}
}

// CheckPatches dry-runs the BytePlus patch set and reports files that still
// need it.
func CheckPatches(repoDir string) Result {
	const name = "BytePlus patches"
	results, err := patcher.Apply(repoDir, patcher.BytePlusPatches(), patcher.Options{DryRun: true})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	var pending []string
	for _, res := range results {
		if res.Outcome == patcher.OutcomePatched || res.Outcome == patcher.OutcomeFailed {
			pending = append(pending, res.File)
		}
	}
	if len(pending) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%d file(s) pending: %s (run automv patch)", len(pending), strings.Join(pending, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: "applied"}
}

// CheckPython runs the interpreter once to confirm it starts.
func CheckPython(ctx context.Context, binary string) Result {
	const name = "Python interpreter"

	status := deps.CheckBinaries(deps.PipelineRequirements(binary))[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, status.Path, "--version").CombinedOutput() //nolint:gosec
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", status.Path, err)}
	}
	version := strings.TrimSpace(string(output))
	if version == "" {
		version = "version unknown"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", version, status.Path)}
}
