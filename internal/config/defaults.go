package config

const (
	defaultRepoDir         = "AutoMV_repo"
	defaultLogDir          = "~/.local/share/automv/logs"
	defaultPythonBinary    = "python"
	defaultStage1Module    = "picture_generate.main"
	defaultDriverFile      = "_ui_generate.py"
	defaultExternalConfig  = "config.py"
	defaultResultsSubdir   = "result"
	defaultEnvFileName     = ".env"
	defaultLockFile        = "~/.local/share/automv/automv.lock"
	defaultAPIBind         = "127.0.0.1:7860"
	defaultAPIMaxUploadMiB = 200
	defaultNtfyTimeoutSec  = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults. Paths derived
// from repo_dir (results, env file) are filled in during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			RepoDir:  defaultRepoDir,
			LogDir:   defaultLogDir,
			LockFile: defaultLockFile,
		},
		Pipeline: Pipeline{
			PythonBinary:   defaultPythonBinary,
			Stage1Module:   defaultStage1Module,
			DriverFile:     defaultDriverFile,
			ExternalConfig: defaultExternalConfig,
		},
		API: API{
			Bind:         defaultAPIBind,
			MaxUploadMiB: defaultAPIMaxUploadMiB,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
