// Package workspace owns the scratch directory of a single generation run.
//
// Each run gets "<work_dir>/run-<uuid>" holding one audio file and one result
// directory per chunk. The directory is removed by Release on every exit
// path; CleanStale prunes runs that were abandoned by a crash.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"subforge/internal/logging"
	"subforge/internal/services"
)

// RunPrefix marks directories created by Open.
const RunPrefix = "run-"

// Workspace is a per-run scratch directory.
type Workspace struct {
	runID  string
	dir    string
	keep   bool
	logger *slog.Logger

	once       sync.Once
	releaseErr error
}

// Open creates a fresh run directory under root.
func Open(root string, logger *slog.Logger) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "open", "work directory not configured", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	runID := RunPrefix + uuid.NewString()
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "workspace", "open", dir, err)
	}
	logger.Debug("workspace created", logging.String("path", dir), logging.String(logging.FieldRunID, runID))
	return &Workspace{runID: runID, dir: dir, logger: logger}, nil
}

// RunID returns the identifier embedded in the directory name.
func (w *Workspace) RunID() string { return w.runID }

// Dir returns the run directory.
func (w *Workspace) Dir() string { return w.dir }

// Keep makes Release leave the directory in place for inspection.
func (w *Workspace) Keep() { w.keep = true }

// ChunkAudioPath returns where the extracted audio of chunkID is written.
func (w *Workspace) ChunkAudioPath(chunkID string) string {
	return filepath.Join(w.dir, "audio", chunkID+".wav")
}

// ChunkResultDir returns the directory the recognizer writes chunkID's
// result into.
func (w *Workspace) ChunkResultDir(chunkID string) string {
	return filepath.Join(w.dir, "results", chunkID)
}

// Release removes the run directory. Subsequent calls return the first result.
func (w *Workspace) Release() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		if w.keep {
			w.logger.Info("workspace kept",
				logging.String("path", w.dir),
				logging.String(logging.FieldEventType, "workspace_kept"),
			)
			return
		}
		if err := os.RemoveAll(w.dir); err != nil {
			w.releaseErr = fmt.Errorf("remove workspace %s: %w", w.dir, err)
			logging.WarnWithContext(w.logger, "workspace cleanup failed", "workspace_cleanup_failed",
				logging.String("path", w.dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
	})
	return w.releaseErr
}
