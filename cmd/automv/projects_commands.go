package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"automv/internal/services"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Browse generated projects",
	}
	projectsCmd.AddCommand(newProjectsListCommand(ctx))
	projectsCmd.AddCommand(newProjectsShowCommand(ctx))
	return projectsCmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List project directories under the results root",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(out, "No projects under %s\n", store.Root())
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				view, err := store.Load(name)
				if err != nil {
					rows = append(rows, []string{name, "-", "-", "error: " + err.Error()})
					continue
				}
				video := "-"
				if view.VideoPath != "" {
					video = filepath.Base(view.VideoPath)
				}
				rows = append(rows, []string{
					name,
					strconv.Itoa(len(view.Segments)),
					strconv.Itoa(len(view.Keyframes)),
					video,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Project", "Segments", "Keyframes", "Video"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newProjectsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a project's storyboard, characters, keyframes and video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			name := args[0]
			view, err := store.Load(name)
			if err != nil {
				return err
			}
			if !store.Exists(name) {
				return services.Wrap(services.ErrNotFound, "projects", "show", fmt.Sprintf("project %q not found under %s", name, store.Root()), nil)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printSection(out, "Storyboard", colorize)
			fmt.Fprintln(out, renderMarkdown(view.Storyboard, out))
			fmt.Fprintln(out)
			printSection(out, "Characters", colorize)
			fmt.Fprintln(out, renderMarkdown(view.Characters, out))
			fmt.Fprintln(out)

			printSection(out, "Keyframes", colorize)
			if len(view.Keyframes) == 0 {
				fmt.Fprintln(out, "No keyframes yet")
			}
			for _, frame := range view.Keyframes {
				fmt.Fprintln(out, statusIndent+frame)
			}
			fmt.Fprintln(out)

			printSection(out, "Video", colorize)
			if view.VideoPath == "" {
				fmt.Fprintln(out, renderStatusLine("Final video", statusWarn, "not generated yet", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Final video", statusOK, view.VideoPath, colorize))
			}
			return nil
		},
	}
}
