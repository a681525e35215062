package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"subforge/internal/fileutil"
	"subforge/internal/pipeline"
	"subforge/internal/services"
	"subforge/internal/subtitles"
)

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var (
		maxChars    int
		output      string
		toClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "compress <file.srt>",
		Short: "Export subtitles as compact start,end,text records for pasting into prompts",
		Long: `Compress renders each cue as "start_ms,end_ms,text" separated by "|", with
line breaks written as <br>. Records are packed into chunks of at most
--max-chars characters; chunks are separated by a blank line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			limit := cfg.Compress.MaxChars
			if cmd.Flags().Changed("max-chars") {
				if maxChars <= 0 {
					return usageError(fmt.Sprintf("--max-chars must be positive, got %d", maxChars))
				}
				limit = maxChars
			}

			timeline, err := pipeline.ReadSubtitleFile(args[0])
			if err != nil {
				return err
			}
			text := subtitles.CompressText(timeline, limit)

			output = strings.TrimSpace(output)
			if output != "" {
				if err := fileutil.WriteFileAtomic(output, []byte(text+"\n"), 0o644); err != nil {
					return services.Wrap(services.ErrTransient, "compress", "write", output, err)
				}
			}
			if toClipboard {
				if err := clipboard.WriteAll(text); err != nil {
					return services.Wrap(services.ErrExternalTool, "compress", "clipboard", "copy failed", err)
				}
			}

			out := cmd.OutOrStdout()
			chunks := len(subtitles.Compress(timeline, limit))
			switch {
			case output == "" && !toClipboard:
				fmt.Fprintln(out, text)
			case output != "":
				fmt.Fprintf(out, "Wrote %d chunks to %s\n", chunks, output)
			}
			if toClipboard {
				fmt.Fprintf(out, "Copied %d chunks to the clipboard\n", chunks)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxChars, "max-chars", 0, "Characters per chunk (default compress.max_chars)")
	f.StringVarP(&output, "output", "o", "", "Write the export to this file")
	f.BoolVar(&toClipboard, "clipboard", false, "Copy the export to the system clipboard")
	return cmd
}
