// Package chunkcache persists recognizer output per transcription chunk in
// SQLite so that re-running generation over the same input, windows, audio
// track, model and language skips the expensive recognizer call.
//
// Entries are keyed by (source fingerprint, audio track, start_ms, end_ms,
// model, language). The fingerprint covers the absolute path, size and
// modification time of the input, so editing the media invalidates its
// entries. A database from an incompatible schema version is rebuilt empty.
package chunkcache
