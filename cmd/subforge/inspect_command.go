package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subforge/internal/language"
	"subforge/internal/media/audio"
	"subforge/internal/pipeline"
	"subforge/internal/timecode"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <media-file>",
		Short: "Show the streams and duration ffprobe reports for a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			probe, err := pipeline.FFprobe(cfg.FFprobeBinary()).Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, probe)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s\n", args[0])
			fmt.Fprintf(out, "Summary: %s\n", probe.Summary())
			if size := probe.SizeBytes(); size > 0 {
				fmt.Fprintf(out, "Size: %s\n", humanize.IBytes(uint64(size)))
			}
			fmt.Fprintf(out, "Language: %s\n", language.DisplayName(cfg.Transcription.Language))
			selection := audio.Select(probe.Streams, cfg.Transcription.Language)
			if selection.Track >= 0 {
				fmt.Fprintf(out, "Selected audio track: %d (%s, %s)\n", selection.Track, selection.Label(), selection.Reason)
			}

			rows := make([][]string, 0, len(probe.Streams))
			audioIndex := 0
			for _, stream := range probe.Streams {
				track := ""
				if stream.CodecType == "audio" {
					track = strconv.Itoa(audioIndex)
					audioIndex++
				}
				duration := ""
				if seconds, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
					duration = displayTime(timecode.FromSeconds(seconds))
				}
				channels := ""
				if stream.Channels > 0 {
					channels = strconv.Itoa(stream.Channels)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					track,
					channels,
					duration,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{right("#"), left("Type"), left("Codec"), right("Audio track"), right("Channels"), right("Duration")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw ffprobe result as JSON")
	return cmd
}
