package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subforge/internal/chunkcache"
	"subforge/internal/fileutil"
	"subforge/internal/logging"
	"subforge/internal/media/audio"
	"subforge/internal/media/ffprobe"
	"subforge/internal/planner"
	"subforge/internal/services"
	"subforge/internal/subtitles"
	"subforge/internal/timecode"
	"subforge/internal/transcript"
	"subforge/internal/workspace"
)

// Request describes one generation run.
type Request struct {
	Input       string
	Checkpoints string
	Ranges      string
	Language    string
	Output      string
	Merge       bool
	AudioTrack  int
	Parallelism int
	KeepWork    bool
}

// Options configures a Generator.
type Options struct {
	WorkDir           string
	DefaultOutputName string
	BackupOnMerge     bool
	Logger            *slog.Logger
	Prober            Prober
	Recognizer        Recognizer
	// Cache is optional; nil disables chunk caching.
	Cache    Cache
	Progress Progress
	// Now is injectable for tests.
	Now func() time.Time
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	Output     string
	Overwrote  bool
	Duration   timecode.Millis
	AudioTrack int
	Plan       planner.Result
	Chunks     int
	CacheHits  int
	Frames     int
	Cues       int
	Merged     bool
	MergeStats subtitles.MergeStats
	Backup     string
	Elapsed    time.Duration
}

// Generator runs subtitle generation.
type Generator struct {
	opts Options
}

// NewGenerator validates opts and returns a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Prober == nil || opts.Recognizer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "prober and recognizer are required", nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{opts: opts}, nil
}

// Generate runs req end to end.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	started := g.opts.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(g.opts.Logger, "pipeline"))
	result := Result{RunID: runID}

	var (
		target OutputTarget
		spec   planner.Spec
	)
	err := runStage(ctx, logger, "validate", func(ctx context.Context, log *slog.Logger) error {
		var err error
		spec, err = planner.ParseInput(req.Checkpoints, req.Ranges)
		if err != nil {
			return err
		}
		target, err = ResolveOutput(req.Output, req.Input, g.opts.DefaultOutputName)
		if err != nil {
			return err
		}
		if target.Exists && !req.Merge {
			logging.WarnWithContext(log, "output file exists and will be overwritten", "output_overwrite",
				logging.String("output", target.Path),
				logging.String(logging.FieldErrorHint, "pass --merge to keep existing cues outside the new segments"),
				logging.String(logging.FieldImpact, "existing subtitles are replaced"),
			)
		}
		probe, err := g.probeInput(ctx, req.Input)
		if err != nil {
			return err
		}
		result.Duration, _ = probe.DurationMillis()
		req.AudioTrack, err = resolveAudioTrack(log, probe, req.AudioTrack, req.Language)
		result.AudioTrack = req.AudioTrack
		return err
	})
	if err != nil {
		return result, err
	}
	result.Output = target.Path
	result.Overwrote = target.Exists

	err = runStage(ctx, logger, "plan", func(_ context.Context, log *slog.Logger) error {
		plan, err := planner.Plan(result.Duration, spec)
		if err != nil {
			return err
		}
		for _, w := range plan.Warnings {
			logging.WarnWithContext(log, w.Message, string(w.Kind),
				logging.Int("segment", w.Segment),
				logging.Int("other", w.Other),
				logging.String(logging.FieldErrorHint, "check the --checkpoints and --segments values"),
				logging.String(logging.FieldImpact, "segments are transcribed as given"),
			)
		}
		log.Info("segments planned",
			logging.String("mode", plan.Mode),
			logging.Int("segments", len(plan.Segments)),
			logging.String("duration", result.Duration.String()),
		)
		result.Plan = plan
		return nil
	})
	if err != nil {
		return result, err
	}

	lock := flock.New(target.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "output", "lock", target.Path, err)
	}
	if !locked {
		return result, services.Wrap(services.ErrConflict, "output", "lock",
			fmt.Sprintf("%s is being written by another run", target.Path), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	ws, err := workspace.Open(g.opts.WorkDir, logger)
	if err != nil {
		return result, err
	}
	if req.KeepWork {
		ws.Keep()
	}
	defer func() { _ = ws.Release() }()

	var chunks []transcript.Chunk
	err = runStage(ctx, logger, "transcribe", func(ctx context.Context, log *slog.Logger) error {
		jobs := make([]chunkJob, 0, len(result.Plan.Segments))
		for i, seg := range result.Plan.Segments {
			if seg.Duration() <= 0 {
				attrs := logging.DecisionAttrs("segment_transcription", "skip", "empty_segment")
				attrs = append(attrs, logging.Int("segment", i+1), logging.String("window", seg.String()))
				log.Info("segment skipped", logging.Args(attrs...)...)
				continue
			}
			jobs = append(jobs, chunkJob{ID: transcript.NewChunkID(i+1, seg.Start, seg.End), Segment: seg})
		}
		var (
			hits int
			err  error
		)
		chunks, hits, err = g.transcribeAll(ctx, log, ws, req, jobs)
		result.Chunks = len(jobs)
		result.CacheHits = hits
		return err
	})
	if err != nil {
		return result, err
	}

	var timeline subtitles.Timeline
	err = runStage(ctx, logger, "coalesce", func(_ context.Context, log *slog.Logger) error {
		transcript.SortChunks(chunks)
		result.Frames = transcript.FrameCount(chunks)
		timeline = transcript.Coalesce(chunks)
		if len(timeline) == 0 {
			logging.WarnWithContext(log, "recognizer produced no speech", "empty_transcript",
				logging.Int("chunks", len(chunks)),
				logging.String(logging.FieldErrorHint, "check the audio track and language"),
				logging.String(logging.FieldImpact, "output contains no cues"),
			)
			return nil
		}
		first, last, _ := timeline.Bounds()
		log.Info("transcript coalesced",
			logging.Int("frames", result.Frames),
			logging.Int("cues", len(timeline)),
			logging.String("span", timecode.MustDisplay(first)+" - "+timecode.MustDisplay(last)),
		)
		return nil
	})
	if err != nil {
		return result, err
	}

	if req.Merge && target.Exists {
		err = runStage(ctx, logger, "merge", func(_ context.Context, log *slog.Logger) error {
			base, err := ReadSubtitleFile(target.Path)
			if err != nil {
				return err
			}
			if g.opts.BackupOnMerge {
				backup, err := fileutil.BackupFile(target.Path, g.opts.Now())
				if err != nil {
					return services.Wrap(services.ErrTransient, "merge", "backup", target.Path, err)
				}
				result.Backup = backup
			}
			timeline, result.MergeStats = subtitles.MergeWithStats(base, timeline)
			result.Merged = true
			log.Info("merged into existing subtitles",
				logging.Int("base_cues", len(base)),
				logging.Int("base_evicted", result.MergeStats.BaseEvicted),
				logging.Int("inserted", result.MergeStats.Inserted),
			)
			return nil
		})
		if err != nil {
			return result, err
		}
	}

	err = runStage(ctx, logger, "write", func(context.Context, *slog.Logger) error {
		return WriteSubtitleFile(target.Path, timeline)
	})
	if err != nil {
		return result, err
	}
	result.Cues = len(timeline)
	result.Elapsed = g.opts.Now().Sub(started)

	logger.Info("subtitles written",
		logging.String(logging.FieldEventType, "generate_complete"),
		logging.String("output", target.Path),
		logging.Int("cues", result.Cues),
		logging.Int("chunks", result.Chunks),
		logging.Int("cache_hits", result.CacheHits),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (g *Generator) probeInput(ctx context.Context, input string) (ffprobe.Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, "input", "validate", "input path required", nil)
	}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ffprobe.Result{}, services.Wrap(services.ErrValidation, "input", "validate", fmt.Sprintf("input file does not exist: %s", input), nil)
		}
		return ffprobe.Result{}, services.Wrap(services.ErrTransient, "input", "validate", input, err)
	}
	if !info.Mode().IsRegular() {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, "input", "validate", fmt.Sprintf("input is not a regular file: %s", input), nil)
	}

	probe, err := g.opts.Prober.Inspect(ctx, input)
	if err != nil {
		return ffprobe.Result{}, err
	}
	if !probe.HasAudio() {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, "input", "validate", fmt.Sprintf("no audio stream in %s", input), nil)
	}
	if _, ok := probe.DurationMillis(); !ok {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, "input", "validate", fmt.Sprintf("could not determine duration of %s", input), nil)
	}
	return probe, nil
}

// resolveAudioTrack returns requested when it names an existing audio stream.
// A negative request selects the stream automatically.
func resolveAudioTrack(log *slog.Logger, probe ffprobe.Result, requested int, lang string) (int, error) {
	count := probe.AudioStreamCount()
	if requested >= 0 {
		if requested >= count {
			return 0, services.Wrap(services.ErrValidation, "input", "validate",
				fmt.Sprintf("audio track %d out of range (input has %d audio streams)", requested, count), nil)
		}
		return requested, nil
	}
	selection := audio.Select(probe.Streams, lang)
	if selection.Track < 0 {
		return 0, services.Wrap(services.ErrValidation, "input", "validate", "no audio stream to select", nil)
	}
	attrs := logging.DecisionAttrs("audio_track", strconv.Itoa(selection.Track), selection.Reason)
	attrs = append(attrs, logging.String("stream", selection.Label()), logging.Int("audio_streams", count))
	log.Info("audio track selected", logging.Args(attrs...)...)
	return selection.Track, nil
}

// ReadSubtitleFile parses the SRT file at path.
func ReadSubtitleFile(path string) (subtitles.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "subtitles", "read", path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "subtitles", "read", path, err)
	}
	timeline, err := subtitles.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return timeline, nil
}

// WriteSubtitleFile serializes t and atomically replaces path.
func WriteSubtitleFile(path string, t subtitles.Timeline) error {
	text := subtitles.Serialize(t)
	if text != "" {
		text += "\n"
	}
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "write", path, err)
	}
	return nil
}

func (g *Generator) cacheKey(fingerprint string, req Request, seg planner.Segment) chunkcache.Key {
	return chunkcache.Key{
		Fingerprint: fingerprint,
		AudioTrack:  req.AudioTrack,
		Start:       seg.Start,
		End:         seg.End,
		Model:       g.opts.Recognizer.Model(),
		Language:    req.Language,
	}
}
