package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"automv/internal/driver"
	"automv/internal/logging"
	"automv/internal/logs"
	"automv/internal/patcher"
	"automv/internal/pipeline"
	"automv/internal/preflight"
	"automv/internal/services"
	"automv/internal/settings"
)

func (s *Server) handleHealth(c *gin.Context) {
	current, err := s.settings.Load()
	if err != nil {
		s.writeError(c, err)
		return
	}
	results := preflight.RunAll(c.Request.Context(), s.cfg, current)
	checks := make([]CheckResult, 0, len(results))
	for _, r := range results {
		checks = append(checks, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	c.JSON(http.StatusOK, HealthResponse{Ready: preflight.Ready(results), Checks: checks})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	current, err := s.settings.Load()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(current))
}

func settingsResponse(current settings.Settings) SettingsResponse {
	resp := SettingsResponse{
		Provider:       current.Provider().String(),
		LipSyncSupport: current.Provider().SupportsLipSync(),
		Ready:          current.Ready(),
		Status:         current.KeyReport(),
		APIKeys:        make([]KeyState, 0, len(settings.APIKeys)),
		Models:         make([]ModelSetting, 0, len(settings.ModelSettings)),
	}
	for _, k := range settings.APIKeys {
		resp.APIKeys = append(resp.APIKeys, KeyState{
			Name:     k.Name,
			Label:    k.Label,
			Required: k.Required,
			Set:      current.Get(k.Name) != "",
		})
	}
	for _, k := range settings.ModelSettings {
		resp.Models = append(resp.Models, ModelSetting{Name: k.Name, Label: k.Label, Value: current.Value(k)})
	}
	return resp
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var body SettingsUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "settings", "invalid JSON body", err))
		return
	}
	summary, err := s.settings.Save(body.Provider, body.Values)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info("settings saved", logging.String("provider", strings.TrimSpace(body.Provider)))
	c.JSON(http.StatusOK, SettingsSaved{Summary: summary})
}

func (s *Server) handleListProjects(c *gin.Context) {
	names, err := s.projects.List()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProjectList{Projects: names})
}

func (s *Server) handleGetProject(c *gin.Context) {
	name := c.Param("name")
	view, err := s.projects.Load(name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !s.projects.Exists(name) {
		s.writeError(c, services.Wrap(services.ErrNotFound, "api", "project", "no project named "+strconv.Quote(name), nil))
		return
	}
	c.JSON(http.StatusOK, ProjectResponse{
		Name:       view.Name,
		VideoPath:  view.VideoPath,
		Storyboard: view.Storyboard,
		Characters: view.Characters,
		Keyframes:  view.Keyframes,
	})
}

func (s *Server) handlePatches(c *gin.Context) {
	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	results, err := patcher.Apply(s.cfg.Paths.RepoDir, patcher.BytePlusPatches(), patcher.Options{
		DryRun: dryRun,
		Logger: s.logger,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := PatchResponse{DryRun: dryRun, Results: make([]PatchResult, 0, len(results))}
	for _, r := range results {
		pr := PatchResult{File: r.File, Outcome: string(r.Outcome), Warnings: r.Warnings}
		if r.Err != nil {
			pr.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, pr)
	}
	c.JSON(http.StatusOK, resp)
}

// handleRun accepts a multipart upload and streams the run as server-sent
// events: one "snapshot" per transcript update, then a single "status".
func (s *Server) handleRun(c *gin.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.writeError(c, services.Wrap(services.ErrBusy, "api", "run", "another pipeline run is in progress", nil))
		return
	}
	defer s.running.Store(false)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes())

	mode, err := driver.ParseLipSyncMode(c.PostForm("lip_sync"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	header, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload exceeds api.max_upload_mib", Kind: "validation"})
			return
		}
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "run", "Please upload a music file.", err))
		return
	}

	uploadDir, err := os.MkdirTemp("", "automv-upload-*")
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer os.RemoveAll(uploadDir)
	audioPath := filepath.Join(uploadDir, "upload"+filepath.Ext(header.Filename))
	if err := c.SaveUploadedFile(header, audioPath); err != nil {
		s.writeError(c, err)
		return
	}

	run := s.orch.Start(pipeline.Request{
		AudioPath:  audioPath,
		Name:       c.PostForm("name"),
		LipSync:    mode,
		Resolution: driver.NormalizeResolution(c.DefaultPostForm("resolution", string(driver.DefaultResolution))),
	})
	s.logger.Info("run accepted", logging.String(logging.FieldRunID, run.ID), logging.String("upload", header.Filename))

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Run-Id", run.ID)
	c.Status(http.StatusOK)

	for snapshot := range run.Snapshots(c.Request.Context()) {
		c.SSEvent("snapshot", SnapshotEvent{Log: snapshot})
		c.Writer.Flush()
	}

	final := RunStatusEvent{
		RunID:     run.ID,
		Status:    string(run.Status()),
		Project:   run.Project(),
		LipSync:   string(run.LipSync()),
		VideoPath: run.VideoPath(),
	}
	if runErr := run.Err(); runErr != nil {
		final.Error = runErr.Error()
		final.Kind = services.Kind(runErr)
	}
	c.SSEvent("status", final)
	c.Writer.Flush()
}

// handleLogs returns the tail of automv.log, or the lines after ?since=.
func (s *Server) handleLogs(c *gin.Context) {
	var (
		win logs.Window
		err error
	)
	if raw := c.Query("since"); raw != "" {
		offset, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			s.writeError(c, services.Wrap(services.ErrValidation, "api", "logs", "since must be a byte offset", parseErr))
			return
		}
		win, err = logs.Since(s.cfg.LogFile(), offset)
	} else {
		lines, parseErr := strconv.Atoi(c.DefaultQuery("lines", "100"))
		if parseErr != nil {
			s.writeError(c, services.Wrap(services.ErrValidation, "api", "logs", "lines must be an integer", parseErr))
			return
		}
		win, err = logs.Last(s.cfg.LogFile(), lines)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	if win.Lines == nil {
		win.Lines = []string{}
	}
	c.JSON(http.StatusOK, LogWindow{Lines: win.Lines, Offset: win.Offset})
}
