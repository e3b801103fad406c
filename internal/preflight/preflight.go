package preflight

import (
	"context"

	"automv/internal/config"
	"automv/internal/configguard"
	"automv/internal/settings"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for a pipeline run.
func RunAll(ctx context.Context, cfg *config.Config, current settings.Settings) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("AutoMV checkout", cfg.Paths.RepoDir),
		CheckWritableFile("AutoMV config", cfg.ExternalConfigPath()),
		CheckStaleBackup(cfg.ExternalConfigPath() + configguard.BackupSuffix),
		CheckResultsDirectory(cfg.Paths.ResultsDir),
		CheckPython(ctx, cfg.Pipeline.PythonBinary),
		CheckCredentials(current),
	}

	// Patch state only makes sense against an existing checkout.
	if results[0].Passed {
		results = append(results, CheckPatches(cfg.Paths.RepoDir))
	}
	return results
}

// Ready reports whether every check passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
