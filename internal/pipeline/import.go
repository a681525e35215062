package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"subforge/internal/logging"
	"subforge/internal/services"
	"subforge/internal/subtitles"
	"subforge/internal/transcript"
)

// ImportResults coalesces recognizer JSON results found in dir. Files were
// written without their chunk offsets, so each offset is recovered from the
// HHMMSS_HHMMSS pair in the file name; a name without one is logged and
// placed at zero.
func ImportResults(dir string, logger *slog.Logger) (subtitles.Timeline, []transcript.Chunk, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrNotFound, "import", "read dir", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	if len(names) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "import", "scan", fmt.Sprintf("no .json results in %s", dir), nil)
	}

	chunks := make([]transcript.Chunk, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, filepath.Ext(name))
		offset, ok := transcript.OffsetFromID(name)
		if !ok {
			logging.WarnWithContext(logger, "chunk offset not recoverable from file name; using 0", "offset_fallback",
				logging.String(logging.FieldChunkID, id),
				logging.String(logging.FieldErrorHint, "name results <prefix>_HHMMSS_HHMMSS.json"),
				logging.String(logging.FieldImpact, "cues of this chunk start at the beginning of the timeline"),
			)
		}
		chunk, err := transcript.LoadWhisperXJSON(filepath.Join(dir, name), id, offset)
		if err != nil {
			return nil, nil, err
		}
		chunks = append(chunks, chunk)
	}
	transcript.SortChunks(chunks)
	return transcript.Coalesce(chunks), chunks, nil
}
