package pipeline

import (
	"context"

	"subforge/internal/chunkcache"
	"subforge/internal/media/ffprobe"
	"subforge/internal/timecode"
	"subforge/internal/transcript"
)

// Prober inspects an input file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Inspect calls f.
func (f ProberFunc) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// FFprobe returns a Prober running the given ffprobe binary.
func FFprobe(binary string) Prober {
	return ProberFunc(func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	})
}

// Recognizer extracts chunk audio and transcribes it. *whisperx.Service
// satisfies it.
type Recognizer interface {
	ExtractChunk(ctx context.Context, source string, audioTrack int, start, end timecode.Millis, dest string) error
	Transcribe(ctx context.Context, audioPath, outputDir, language string) (string, error)
	Model() string
}

// Cache stores recognizer output per chunk window. *chunkcache.Store
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key chunkcache.Key) ([]transcript.Frame, bool, error)
	Put(ctx context.Context, key chunkcache.Key, frames []transcript.Frame) error
}
