package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subforge/internal/services"
)

// DefaultOutputName is used when neither a file name nor a configured
// default is available.
const DefaultOutputName = "output.srt"

// OutputTarget is a validated destination for a subtitle file.
type OutputTarget struct {
	Path string
	// Exists reports that a file is already present at Path and will be
	// overwritten, or used as the merge base.
	Exists bool
}

// ResolveOutput validates the requested destination. An empty path means the
// input's directory; a directory gets defaultName appended; anything else must
// be an .srt path whose parent directory exists.
func ResolveOutput(path, input, defaultName string) (OutputTarget, error) {
	defaultName = strings.TrimSpace(defaultName)
	if defaultName == "" {
		defaultName = DefaultOutputName
	}

	path = strings.TrimSpace(path)
	if path == "" {
		if strings.TrimSpace(input) == "" {
			return OutputTarget{}, outputError("output path must not be empty")
		}
		path = filepath.Join(filepath.Dir(input), defaultName)
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, defaultName)
	}

	if !strings.EqualFold(filepath.Ext(path), ".srt") {
		return OutputTarget{}, outputError(fmt.Sprintf("invalid output file type %q, expected an .srt file", path))
	}
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return OutputTarget{}, outputError(fmt.Sprintf("output directory does not exist: %s", dir))
	}

	target := OutputTarget{Path: path}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return OutputTarget{}, outputError(fmt.Sprintf("output path is a directory: %s", path))
		}
		target.Exists = true
	}
	return target, nil
}

func outputError(msg string) error {
	return services.Wrap(services.ErrValidation, "output", "resolve", msg, nil)
}

// FormatElapsed renders d as "1 hours, 2 minutes, 3 seconds", omitting zero
// hours and minutes. Seconds are always shown when nothing else is.
func FormatElapsed(d time.Duration) string {
	total := int64(max(d, 0) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d seconds", seconds))
	}
	return strings.Join(parts, ", ")
}
