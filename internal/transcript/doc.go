// Package transcript turns per-chunk recognizer output into subtitle cues.
//
// A Chunk carries its identifier and absolute offset together, as produced by
// whoever cut the chunk (see NewChunkID); downstream code never re-derives the
// offset. OffsetFromID exists only for results found on disk without their
// pairing, and degrades to zero when the identifier carries no boundary pair.
package transcript
