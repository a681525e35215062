package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subforge/internal/workspace"
)

func newWorkCommand(ctx *commandContext) *cobra.Command {
	workCmd := &cobra.Command{
		Use:   "work",
		Short: "List and remove run directories kept under paths.work_dir",
	}
	workCmd.AddCommand(newWorkListCommand(ctx))
	workCmd.AddCommand(newWorkCleanCommand(ctx))
	return workCmd
}

func newWorkListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show kept run directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runs, err := workspace.ListRuns(cfg.Paths.WorkDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No run directories")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			var total int64
			for _, run := range runs {
				total += run.Size
				rows = append(rows, []string{run.Name, humanize.Time(run.ModTime), humanize.IBytes(uint64(run.Size))})
			}
			fmt.Fprintln(out, renderTable([]column{left("Run"), left("Modified"), right("Size")}, rows))
			fmt.Fprintf(out, "%d runs, %s in %s\n", len(runs), humanize.IBytes(uint64(total)), cfg.Paths.WorkDir)
			return nil
		},
	}
}

func newWorkCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove kept run directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if olderThan < 0 {
				return usageError("--older-than must not be negative")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := workspace.CleanStale(cfg.Paths.WorkDir, olderThan, logger)
			var freed int64
			for _, run := range result.Removed {
				freed += run.Size
			}
			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 {
				fmt.Fprintln(out, "No run directories removed")
			} else {
				fmt.Fprintf(out, "Removed %d run directories (%s)\n", len(result.Removed), humanize.IBytes(uint64(freed)))
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d run directories could not be removed: %w", len(result.Failed), result.Failed[0].Err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove runs last modified longer ago than this (0 removes all)")
	return cmd
}
