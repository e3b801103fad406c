package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"automv/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display automv's structured log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFile()
			out := cmd.OutOrStdout()

			var win logs.Window
			if lines == 0 {
				win, err = logs.Since(path, 0)
			} else {
				win, err = logs.Last(path, lines)
			}
			if err != nil {
				return fmt.Errorf("tail logs: %w", err)
			}
			for _, line := range win.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(win.Lines) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, win.Offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
