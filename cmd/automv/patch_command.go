package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"automv/internal/patcher"
)

func newPatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply the BytePlus patch set to the AutoMV checkout",
		Long: "Rewrite AutoMV sources so the Ark client works with BytePlus as well as Volcengine.\n\n" +
			"Already patched files are left alone, so the command is safe to repeat.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Checking BytePlus patches against AutoMV repo (dry run)...")
			} else {
				fmt.Fprintln(out, "Applying BytePlus patches to AutoMV repo...")
			}

			results, err := patcher.Apply(cfg.Paths.RepoDir, patcher.BytePlusPatches(), patcher.Options{
				DryRun: dryRun,
				Logger: ctx.loggerValue(),
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				for _, w := range r.Warnings {
					fmt.Fprintf(out, "  [WARN] %s\n", w)
				}
				fmt.Fprintln(out, r.Line())
				if r.Outcome == patcher.OutcomeFailed {
					failed++
				}
			}
			fmt.Fprintln(out)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to patch", failed, len(results))
			}
			fmt.Fprintln(out, "Done.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing files")
	return cmd
}
