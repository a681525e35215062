// Package pipeline wires the subtitle generation run together.
//
// Generate validates the input and output, plans segments over the probed
// duration, transcribes every segment as a chunk (in parallel, through the
// chunk cache), coalesces the chunk transcripts into one timeline, optionally
// merges it over an existing subtitle file, and writes the result atomically
// under an exclusive file lock.
//
// External collaborators are interfaces (Prober, Recognizer, Cache) so the
// whole run can be exercised in tests without ffmpeg or WhisperX.
package pipeline
