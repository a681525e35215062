// Package planner turns a media duration plus the user's chunking request into
// the ordered list of segments handed to the recognizer.
//
// Raw flag strings are inspected exactly once, by ParseInput, which yields a
// tagged Spec (Pattern, CheckpointList, RangeList or Whole). Plan consumes the
// Spec and never re-sniffs strings. Pattern and checkpoint plans are contiguous
// partitions of [0, total); range plans are passed through as written, with
// ordering and overlap problems reported as warnings rather than errors.
package planner
