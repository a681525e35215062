package transcript

import (
	"cmp"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"subforge/internal/subtitles"
	"subforge/internal/timecode"
)

// Frame is one timed recognizer phrase, relative to its chunk.
type Frame struct {
	Start timecode.Millis `json:"start_ms"`
	End   timecode.Millis `json:"end_ms"`
	Text  string          `json:"text"`
}

// Chunk is the recognizer output for one planned segment.
type Chunk struct {
	ID     string
	Offset timecode.Millis
	Frames []Frame
}

// NewChunkID names the ordinal-th chunk covering [start, end). Identifiers
// sort lexically in plan order and embed the compact boundary pair.
func NewChunkID(ordinal int, start, end timecode.Millis) string {
	return fmt.Sprintf("chunk-%04d_%s_%s", ordinal, timecode.ToCompact(start, false), timecode.ToCompact(end, false))
}

var boundaryPattern = regexp.MustCompile(`(\d{6,})_(\d{6,})$`)

// OffsetFromID recovers a chunk offset from the start boundary embedded in id
// (or a file name derived from it). The compact form has second precision.
func OffsetFromID(id string) (timecode.Millis, bool) {
	name := filepath.Base(id)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	match := boundaryPattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	offset, err := timecode.FromCompact(match[1])
	if err != nil {
		return 0, false
	}
	return offset, true
}

// SortChunks orders chunks chronologically by offset, then by ID.
func SortChunks(chunks []Chunk) {
	slices.SortStableFunc(chunks, func(a, b Chunk) int {
		if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Coalesce shifts every frame by its chunk offset, concatenates the chunks in
// the given order, and merges runs of consecutive frames with identical text
// into one cue spanning from the first frame's start to the last frame's end.
// Text is compared exactly as recognized and trimmed only in the emitted cue. A
// blank frame closes the open cue without opening one. Cues are numbered 1..N.
func Coalesce(chunks []Chunk) subtitles.Timeline {
	timeline := subtitles.Timeline{}
	var (
		open    subtitles.Entry
		openRaw string
		hasOpen bool
	)
	emit := func() {
		if !hasOpen {
			return
		}
		timeline = append(timeline, open)
		hasOpen = false
	}
	for _, chunk := range chunks {
		for _, frame := range chunk.Frames {
			end := frame.End + chunk.Offset
			if hasOpen && frame.Text == openRaw {
				open.End = end
				continue
			}
			emit()
			text := strings.TrimSpace(frame.Text)
			if text == "" {
				continue
			}
			open = subtitles.Entry{Start: frame.Start + chunk.Offset, End: end, Text: text}
			openRaw = frame.Text
			hasOpen = true
		}
	}
	emit()
	return timeline.Renumber()
}

// FrameCount returns the total number of frames across chunks.
func FrameCount(chunks []Chunk) int {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk.Frames)
	}
	return total
}
