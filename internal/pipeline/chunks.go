package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"subforge/internal/chunkcache"
	"subforge/internal/logging"
	"subforge/internal/planner"
	"subforge/internal/services"
	"subforge/internal/transcript"
	"subforge/internal/workspace"
)

type chunkJob struct {
	ID      string
	Segment planner.Segment
}

type chunkOutcome struct {
	index  int
	chunk  transcript.Chunk
	cached bool
	err    error
}

// transcribeAll processes jobs with req.Parallelism workers. The first
// failure cancels the remaining jobs. Chunks are returned in job order.
func (g *Generator) transcribeAll(ctx context.Context, logger *slog.Logger, ws *workspace.Workspace, req Request, jobs []chunkJob) ([]transcript.Chunk, int, error) {
	workers := min(max(req.Parallelism, 1), max(len(jobs), 1))

	fingerprint := ""
	if g.opts.Cache != nil {
		fp, err := chunkcache.Fingerprint(req.Input)
		if err != nil {
			logging.WarnWithContext(logger, "chunk cache disabled for this run", "cache_fingerprint_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "every chunk is transcribed"),
			)
		} else {
			fingerprint = fp
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.opts.Progress.Start(len(jobs))
	defer g.opts.Progress.Finish()

	queue := make(chan int)
	outcomes := make(chan chunkOutcome, len(jobs))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				chunk, cached, err := g.processChunk(ctx, logger, ws, req, fingerprint, jobs[idx])
				if err != nil {
					cancel()
				} else {
					g.opts.Progress.ChunkDone(jobs[idx].ID, cached)
				}
				outcomes <- chunkOutcome{index: idx, chunk: chunk, cached: cached, err: err}
			}
		}()
	}

	go func() {
		defer close(queue)
		for idx := range jobs {
			select {
			case queue <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	chunks := make([]transcript.Chunk, len(jobs))
	completed := make([]bool, len(jobs))
	hits := 0
	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = outcome.err
			}
			continue
		}
		chunks[outcome.index] = outcome.chunk
		completed[outcome.index] = true
		if outcome.cached {
			hits++
		}
	}
	if firstErr != nil {
		return nil, hits, firstErr
	}
	for _, done := range completed {
		if !done {
			if err := ctx.Err(); err != nil {
				return nil, hits, err
			}
			return nil, hits, services.Wrap(services.ErrTransient, "transcribe", "collect", "chunk result missing", nil)
		}
	}
	return chunks, hits, nil
}

func (g *Generator) processChunk(ctx context.Context, logger *slog.Logger, ws *workspace.Workspace, req Request, fingerprint string, job chunkJob) (transcript.Chunk, bool, error) {
	ctx = services.WithChunk(ctx, job.ID)
	log := logging.WithContext(ctx, logger)
	if err := ctx.Err(); err != nil {
		return transcript.Chunk{}, false, err
	}

	key := g.cacheKey(fingerprint, req, job.Segment)
	if fingerprint != "" {
		frames, hit, err := g.opts.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Debug("chunk cache read failed", logging.Error(err))
		case hit:
			log.Debug("chunk served from cache", logging.Int("frames", len(frames)))
			return transcript.Chunk{ID: job.ID, Offset: job.Segment.Start, Frames: frames}, true, nil
		}
	}

	audioPath := ws.ChunkAudioPath(job.ID)
	if err := g.opts.Recognizer.ExtractChunk(ctx, req.Input, req.AudioTrack, job.Segment.Start, job.Segment.End, audioPath); err != nil {
		return transcript.Chunk{}, false, err
	}
	jsonPath, err := g.opts.Recognizer.Transcribe(ctx, audioPath, ws.ChunkResultDir(job.ID), req.Language)
	if err != nil {
		return transcript.Chunk{}, false, err
	}
	chunk, err := transcript.LoadWhisperXJSON(jsonPath, job.ID, job.Segment.Start)
	if err != nil {
		return transcript.Chunk{}, false, err
	}
	log.Debug("chunk transcribed",
		logging.Int("frames", len(chunk.Frames)),
		logging.String("window", job.Segment.String()),
	)

	if fingerprint != "" {
		if err := g.opts.Cache.Put(ctx, key, chunk.Frames); err != nil {
			log.Debug("chunk cache write failed", logging.Error(err))
		}
	}
	return chunk, false, nil
}
