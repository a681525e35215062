package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subforge/internal/chunkcache"
	"subforge/internal/config"
	"subforge/internal/language"
	"subforge/internal/logging"
	"subforge/internal/pipeline"
	"subforge/internal/services/whisperx"
	"subforge/internal/workspace"
)

// staleRunAge is how old an abandoned run directory must be before generate
// removes it.
const staleRunAge = 24 * time.Hour

type generateFlags struct {
	input       string
	checkpoints string
	segments    string
	language    string
	output      string
	merge       bool
	parallel    int
	audioTrack  int
	noCache     bool
	keepWork    bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Transcribe an audio or video file into an SRT subtitle file",
		Example: `  subforge generate -i talk.mp3
  subforge generate -i talk.mp3 -s 5m --parallel 4
  subforge generate -i movie.mkv -c 10:00,25:30 -l de -o movie.de.srt
  subforge generate -i movie.mkv -s 1:00:00- -o movie.srt --merge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			req, err := buildGenerateRequest(cmd, cfg, flags)
			if err != nil {
				return err
			}

			cleaned := workspace.CleanStale(cfg.Paths.WorkDir, staleRunAge, logger)
			if len(cleaned.Removed) > 0 {
				logger.Debug("removed stale run directories", logging.Int("count", len(cleaned.Removed)))
			}

			opts := pipeline.Options{
				WorkDir:           cfg.Paths.WorkDir,
				DefaultOutputName: cfg.Output.DefaultName,
				BackupOnMerge:     cfg.Output.BackupOnMerge,
				Logger:            logger,
				Prober:            pipeline.FFprobe(cfg.FFprobeBinary()),
				Recognizer:        newRecognizer(cfg),
				Progress:          pipeline.NewProgress(cmd.ErrOrStderr(), logger, logging.StderrIsTerminal()),
			}
			if cfg.Cache.Enabled && !flags.noCache {
				store, err := chunkcache.Open(cfg.Cache.Path)
				if err != nil {
					logging.WarnWithContext(logger, "chunk cache unavailable", "cache_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run subforge cache clear or remove "+cfg.Cache.Path),
						logging.String(logging.FieldImpact, "every chunk is transcribed"),
					)
				} else {
					defer store.Close()
					opts.Cache = store
				}
			}

			generator, err := pipeline.NewGenerator(opts)
			if err != nil {
				return err
			}
			result, err := generator.Generate(cmd.Context(), req)
			pruneLogs(logger, cfg)
			if err != nil {
				return err
			}
			printGenerateSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Audio or video file to transcribe")
	f.StringVarP(&flags.checkpoints, "checkpoints", "c", "", "Chunk boundaries (hh:mm:ss list, or a pattern such as 5m)")
	f.StringVarP(&flags.segments, "segments", "s", "", "Time ranges to transcribe (START-END list, or a pattern such as 5m)")
	f.StringVarP(&flags.language, "language", "l", "", "Spoken language (ISO 639 code; empty auto-detects)")
	f.StringVarP(&flags.output, "output", "o", "", "Output .srt file or directory")
	f.BoolVarP(&flags.merge, "merge", "m", false, "Merge into an existing output file instead of overwriting it")
	f.IntVar(&flags.parallel, "parallel", 0, "Chunks transcribed concurrently (default transcription.parallelism)")
	f.IntVar(&flags.audioTrack, "audio-track", 0, "Audio stream index to transcribe, -1 selects by language (default transcription.audio_track)")
	f.BoolVar(&flags.noCache, "no-cache", false, "Skip the chunk transcript cache")
	f.BoolVar(&flags.keepWork, "keep-work", false, "Keep extracted audio and recognizer output for inspection")

	return cmd
}

func buildGenerateRequest(cmd *cobra.Command, cfg *config.Config, flags generateFlags) (pipeline.Request, error) {
	input := strings.TrimSpace(flags.input)
	if input == "" {
		return pipeline.Request{}, usageError("--input is required")
	}
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}

	lang := cfg.Transcription.Language
	if cmd.Flags().Changed("language") {
		normalized, err := language.Normalize(flags.language)
		if err != nil {
			return pipeline.Request{}, err
		}
		lang = normalized
	}

	parallel := cfg.Transcription.Parallelism
	if cmd.Flags().Changed("parallel") {
		if flags.parallel < 1 {
			return pipeline.Request{}, usageError(fmt.Sprintf("--parallel must be at least 1, got %d", flags.parallel))
		}
		parallel = flags.parallel
	}
	audioTrack := cfg.Transcription.AudioTrack
	if cmd.Flags().Changed("audio-track") {
		if flags.audioTrack < -1 {
			return pipeline.Request{}, usageError(fmt.Sprintf("--audio-track must be -1 or a stream index, got %d", flags.audioTrack))
		}
		audioTrack = flags.audioTrack
	}

	return pipeline.Request{
		Input:       input,
		Checkpoints: flags.checkpoints,
		Ranges:      flags.segments,
		Language:    lang,
		Output:      flags.output,
		Merge:       flags.merge || cfg.Output.Merge,
		AudioTrack:  audioTrack,
		Parallelism: parallel,
		KeepWork:    flags.keepWork,
	}, nil
}

func newRecognizer(cfg *config.Config) *whisperx.Service {
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
	}, cfg.FFmpegBinary(), cfg.UVXBinary())
}

func pruneLogs(logger *slog.Logger, cfg *config.Config) {
	logging.PruneArchives(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now())
}

func printGenerateSummary(out io.Writer, result pipeline.Result) {
	fmt.Fprintf(out, "Wrote %s cues to %s\n", humanize.Comma(int64(result.Cues)), result.Output)
	fmt.Fprintf(out, "Chunks: %d (%d from cache, %s recognizer frames)\n",
		result.Chunks, result.CacheHits, humanize.Comma(int64(result.Frames)))
	if result.Merged {
		fmt.Fprintf(out, "Merged: %d existing cues replaced\n", result.MergeStats.BaseEvicted)
		if result.Backup != "" {
			fmt.Fprintf(out, "Backup: %s\n", result.Backup)
		}
	}
	fmt.Fprintf(out, "Elapsed: %s\n", pipeline.FormatElapsed(result.Elapsed))
}
