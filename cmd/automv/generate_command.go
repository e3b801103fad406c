package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"automv/internal/driver"
	"automv/internal/logging"
	"automv/internal/pipeline"
)

// runFailedError reports a run that ended in anything but StatusCompleted.
// The transcript has already been printed, so the message stays short.
type runFailedError struct {
	status    pipeline.Status
	cancelled bool
	err       error
}

func (e *runFailedError) Error() string {
	return fmt.Sprintf("pipeline run ended with status %s", e.status)
}

func (e *runFailedError) Unwrap() error { return e.err }

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var audioPath string
	var name string
	var lipSync string
	var resolution string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a music video from an audio file",
		Long: "Run both AutoMV stages for one song and stream their output.\n\n" +
			"Interrupting the command stops the running stage and restores AutoMV's config.py.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := driver.ParseLipSyncMode(lipSync)
			if err != nil {
				return err
			}
			orch, err := ctx.orchestrator()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run := orch.Start(pipeline.Request{
				AudioPath:  strings.TrimSpace(audioPath),
				Name:       name,
				LipSync:    mode,
				Resolution: driver.NormalizeResolution(resolution),
			})
			ctx.loggerValue().Debug("run started", logging.String(logging.FieldRunID, run.ID))

			if err := streamRun(runCtx, run, cmd); err != nil {
				return err
			}

			status := run.Status()
			if status == pipeline.StatusCompleted {
				return nil
			}
			return &runFailedError{
				status:    status,
				cancelled: status == pipeline.StatusCancelled,
				err:       run.Err(),
			}
		},
	}

	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Path to the .mp3 or .wav file")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (defaults to \"untitled\")")
	cmd.Flags().StringVar(&lipSync, "lip-sync", "none", "Lip-sync mode: none, jimeng, or wan")
	cmd.Flags().StringVar(&resolution, "resolution", string(driver.DefaultResolution), "Output resolution: 480p or 720p")
	return cmd
}

// streamRun prints each new piece of the transcript as it arrives. Snapshots
// only ever grow, so the suffix past the previous snapshot is the new text.
func streamRun(runCtx context.Context, run *pipeline.Run, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	printed := 0
	for snapshot := range run.Snapshots(runCtx) {
		if len(snapshot) <= printed {
			continue
		}
		if _, err := fmt.Fprint(out, snapshot[printed:]); err != nil {
			return err
		}
		printed = len(snapshot)
	}
	if !strings.HasSuffix(run.Transcript(), "\n") {
		fmt.Fprintln(out)
	}
	return nil
}
