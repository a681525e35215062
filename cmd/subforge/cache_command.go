package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subforge/internal/chunkcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the chunk transcript cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show chunk cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", store.Path())
			fmt.Fprintf(out, "Entries: %s\n", humanize.Comma(int64(stats.Entries)))
			fmt.Fprintf(out, "Frames:  %s\n", humanize.Comma(stats.Frames))
			fmt.Fprintf(out, "Size:    %s\n", humanize.IBytes(uint64(max(stats.SizeBytes, 0))))
			if stats.Entries > 0 {
				fmt.Fprintf(out, "Oldest:  %s\n", humanize.Time(stats.Oldest))
				fmt.Fprintf(out, "Newest:  %s\n", humanize.Time(stats.Newest))
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached chunk transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return usageError(fmt.Sprintf("--older-than must not be negative, got %s", olderThan))
			}
			store, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			var cutoff time.Time
			if olderThan > 0 {
				cutoff = time.Now().Add(-olderThan)
			}
			removed, err := store.Clear(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries removed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cache entries\n", humanize.Comma(removed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove entries older than this (e.g. 720h)")
	return cmd
}

func openCache(ctx *commandContext) (*chunkcache.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, "Chunk cache is disabled (set cache.enabled = true in config.toml)", nil
	}
	store, err := chunkcache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}
