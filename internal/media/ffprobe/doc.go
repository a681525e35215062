// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// It is the duration provider for segment planning: Inspect runs ffprobe,
// and DurationMillis/HasAudio answer whether an input can be transcribed and
// how long it is.
package ffprobe
