package pipeline

import (
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"subforge/internal/logging"
)

// Progress receives chunk completion events. Implementations must be safe for
// concurrent use.
type Progress interface {
	Start(total int)
	ChunkDone(chunkID string, cached bool)
	Finish()
}

// NewProgress draws a progress bar on w when interactive is set and otherwise
// logs sampled progress through logger.
func NewProgress(w io.Writer, logger *slog.Logger, interactive bool) Progress {
	if interactive && w != nil {
		return &barProgress{w: w}
	}
	return &logProgress{logger: logger, sampler: logging.NewProgressSampler(25)}
}

type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("transcribing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) ChunkDone(string, bool) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type logProgress struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

func (p *logProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	p.sampler.Reset()
}

func (p *logProgress) ChunkDone(chunkID string, cached bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.logger == nil || p.total == 0 {
		return
	}
	percent := float64(p.done) * 100 / float64(p.total)
	if !p.sampler.ShouldLog(percent, "transcribe") && p.done != p.total {
		return
	}
	p.logger.Info("transcription progress",
		logging.String(logging.FieldEventType, "transcribe_progress"),
		logging.String("last_chunk", chunkID),
		logging.Bool("cached", cached),
		logging.Int("done", p.done),
		logging.Int("total", p.total),
	)
}

func (p *logProgress) Finish() {}

type nopProgress struct{}

func (nopProgress) Start(int)               {}
func (nopProgress) ChunkDone(string, bool) {}
func (nopProgress) Finish()                 {}
