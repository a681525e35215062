package workspace

import (
	"cmp"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"subforge/internal/logging"
	"subforge/internal/services"
)

// Run describes a run directory left under the work root, either kept with
// --keep-work or abandoned by a crash.
type Run struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// RunError pairs a run directory with the error that kept it on disk.
type RunError struct {
	Path string
	Err  error
}

// CleanResult reports what CleanStale removed.
type CleanResult struct {
	Removed []Run
	Failed  []RunError
}

// ListRuns returns the run directories under root, oldest first. Entries that
// Open did not create are ignored and a missing root yields no runs.
func ListRuns(root string) ([]Run, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "workspace", "list", root, err)
	}

	var runs []Run
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), RunPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(root, entry.Name())
		runs = append(runs, Run{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    dirSize(path),
		})
	}
	slices.SortFunc(runs, func(a, b Run) int { return cmp.Compare(a.ModTime.UnixNano(), b.ModTime.UnixNano()) })
	return runs, nil
}

// CleanStale removes run directories under root last modified more than
// maxAge ago. A maxAge of zero removes every run.
func CleanStale(root string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	var result CleanResult
	runs, err := ListRuns(root)
	if err != nil {
		result.Failed = append(result.Failed, RunError{Path: root, Err: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, run := range runs {
		if maxAge > 0 && !run.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(run.Path); err != nil {
			result.Failed = append(result.Failed, RunError{Path: run.Path, Err: err})
			logging.WarnWithContext(logger, "run directory not removed", "workspace_cleanup_failed",
				logging.String("path", run.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, run)
		if logger != nil {
			logger.Info("run directory removed",
				logging.String(logging.FieldEventType, "workspace_cleanup"),
				logging.String("path", run.Path),
				logging.Int64("size_bytes", run.Size),
				logging.Duration("age", time.Since(run.ModTime)),
			)
		}
	}
	return result
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
