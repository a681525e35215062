package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subforge/internal/pipeline"
	"subforge/internal/subtitles"
	"subforge/internal/transcript"
)

func newCoalesceCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "coalesce <results-dir>",
		Short: "Build subtitles from a directory of WhisperX JSON results",
		Long: `Coalesce reads every .json result in a directory (for example one kept with
generate --keep-work), recovers each chunk's offset from the HHMMSS_HHMMSS pair
at the end of its file name, and joins the chunks into one subtitle timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			timeline, chunks, err := pipeline.ImportResults(args[0], logger)
			if err != nil {
				return err
			}

			output = strings.TrimSpace(output)
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), subtitles.Serialize(timeline))
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := pipeline.ResolveOutput(output, args[0], cfg.Output.DefaultName)
			if err != nil {
				return err
			}
			if err := pipeline.WriteSubtitleFile(target.Path, timeline); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues from %d chunks (%d frames) to %s\n",
				len(timeline), len(chunks), transcript.FrameCount(chunks), target.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the subtitles to this .srt file or directory")
	return cmd
}
