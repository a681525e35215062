// Package whisperx drives the external speech recognizer.
//
// A transcription chunk is produced in two steps: ExtractChunk cuts a
// millisecond-precise window out of the input's audio stream with ffmpeg, and
// Transcribe runs `uvx whisperx` over the WAV, leaving a JSON result whose
// segment times are relative to the chunk start. LoadSegments reads that
// result back.
//
// Both steps go through an injectable command runner so tests never spawn
// ffmpeg or Python.
package whisperx
