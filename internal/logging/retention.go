package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxLogBytes is the size at which subforge.log is rotated.
const MaxLogBytes = 10 << 20

const archiveTimestampLayout = "20060102-150405"

// RotateLog renames path to "<name>-<timestamp><ext>" beside it once it has
// grown to maxBytes. It returns the archive path, or "" when nothing moved.
func RotateLog(path string, maxBytes int64, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat log file: %w", err)
	}
	if maxBytes <= 0 || info.Size() < maxBytes {
		return "", nil
	}
	ext := filepath.Ext(path)
	archive := strings.TrimSuffix(path, ext) + "-" + now.Format(archiveTimestampLayout) + ext
	if err := os.Rename(path, archive); err != nil {
		return "", fmt.Errorf("rotate log file: %w", err)
	}
	return archive, nil
}

// PruneArchives removes rotated logs in dir whose modification time is more
// than retentionDays before now, and returns how many were removed. The live
// log is never touched. retentionDays of 0 disables pruning.
func PruneArchives(logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	ext := filepath.Ext(LogFileName)
	pattern := strings.TrimSuffix(LogFileName, ext) + "-*" + ext
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)

	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log archive not removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "old log archive stays on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log archive pruned",
				String(FieldEventType, "log_pruned"),
				String("path", path),
			)
		}
	}
	return removed
}
