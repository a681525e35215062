package transcript

import (
	"errors"
	"io/fs"

	"subforge/internal/services"
	"subforge/internal/services/whisperx"
	"subforge/internal/timecode"
)

// FramesFromSegments converts recognizer segments (float seconds) to frames.
func FramesFromSegments(segments []whisperx.Segment) []Frame {
	frames := make([]Frame, 0, len(segments))
	for _, seg := range segments {
		frames = append(frames, Frame{
			Start: timecode.FromSeconds(seg.Start),
			End:   timecode.FromSeconds(seg.End),
			Text:  seg.Text,
		})
	}
	return frames
}

// LoadWhisperXJSON reads a WhisperX JSON result into a Chunk with the given
// identity.
func LoadWhisperXJSON(path, id string, offset timecode.Millis) (Chunk, error) {
	segments, err := whisperx.LoadSegments(path)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return Chunk{}, services.Wrap(marker, "transcript", "load result", path, err)
	}
	return Chunk{ID: id, Offset: offset, Frames: FramesFromSegments(segments)}, nil
}
