package server

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// CheckResult is one preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// HealthResponse reports overall readiness.
type HealthResponse struct {
	Ready  bool          `json:"ready"`
	Checks []CheckResult `json:"checks"`
}

// KeyState describes one credential without revealing it.
type KeyState struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Set      bool   `json:"set"`
}

// ModelSetting is a non-secret model identifier and its effective value.
type ModelSetting struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// SettingsResponse is returned by GET /api/settings.
type SettingsResponse struct {
	Provider       string         `json:"provider"`
	LipSyncSupport bool           `json:"lip_sync_supported"`
	Ready          bool           `json:"ready"`
	Status         string         `json:"status"`
	APIKeys        []KeyState     `json:"api_keys"`
	Models         []ModelSetting `json:"models"`
}

// SettingsUpdate is the body of PUT /api/settings. Blank values leave the
// stored value unchanged.
type SettingsUpdate struct {
	Provider string            `json:"provider"`
	Values   map[string]string `json:"values"`
}

// SettingsSaved echoes the status report produced by a save.
type SettingsSaved struct {
	Summary string `json:"summary"`
}

// ProjectList is returned by GET /api/projects.
type ProjectList struct {
	Projects []string `json:"projects"`
}

// ProjectResponse is returned by GET /api/projects/:name.
type ProjectResponse struct {
	Name       string   `json:"name"`
	VideoPath  string   `json:"video_path,omitempty"`
	Storyboard string   `json:"storyboard"`
	Characters string   `json:"characters"`
	Keyframes  []string `json:"keyframes"`
}

// PatchResult reports one target file of a patch run.
type PatchResult struct {
	File     string   `json:"file"`
	Outcome  string   `json:"outcome"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// PatchResponse is returned by POST /api/patches.
type PatchResponse struct {
	DryRun  bool          `json:"dry_run"`
	Results []PatchResult `json:"results"`
}

// SnapshotEvent carries the whole transcript so far.
type SnapshotEvent struct {
	Log string `json:"log"`
}

// RunStatusEvent is the final event of a run stream.
type RunStatusEvent struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Project   string `json:"project,omitempty"`
	LipSync   string `json:"lip_sync,omitempty"`
	VideoPath string `json:"video_path,omitempty"`
	Error     string `json:"error,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// LogWindow is returned by GET /api/logs. Pass Offset back as ?since= to
// fetch only newer lines.
type LogWindow struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
