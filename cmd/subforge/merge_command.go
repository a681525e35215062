package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subforge/internal/fileutil"
	"subforge/internal/pipeline"
	"subforge/internal/services"
	"subforge/internal/subtitles"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <base.srt> <overlay.srt>",
		Short: "Replace the overlapping cues of a subtitle file with another file's cues",
		Long: `Merge applies every overlay cue to the base file: base cues overlapping an
overlay cue are removed whole, the overlay cue is inserted, and the result is
renumbered. Without --output the merged subtitles are printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := pipeline.ReadSubtitleFile(args[0])
			if err != nil {
				return err
			}
			overlay, err := pipeline.ReadSubtitleFile(args[1])
			if err != nil {
				return err
			}
			merged, stats := subtitles.MergeWithStats(base, overlay)

			output = strings.TrimSpace(output)
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), subtitles.Serialize(merged))
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
			lock := flock.New(target.Path + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return services.Wrap(services.ErrTransient, "merge", "lock", target.Path, err)
			}
			if !locked {
				return services.Wrap(services.ErrConflict, "merge", "lock", target.Path+" is being written by another run", nil)
			}
			defer func() {
				_ = lock.Unlock()
				_ = os.Remove(lock.Path())
			}()

			backup := ""
			if target.Exists && cfg.Output.BackupOnMerge {
				backup, err = fileutil.BackupFile(target.Path, time.Now())
				if err != nil {
					return services.Wrap(services.ErrTransient, "merge", "backup", target.Path, err)
				}
			}
			if err := pipeline.WriteSubtitleFile(target.Path, merged); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d cues to %s\n", len(merged), target.Path)
			fmt.Fprintf(out, "Replaced %d base cues with %d overlay cues\n", stats.BaseEvicted, stats.Inserted-stats.OverlaySuperseded)
			if backup != "" {
				fmt.Fprintf(out, "Backup: %s\n", backup)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged subtitles to this .srt file")
	return cmd
}
