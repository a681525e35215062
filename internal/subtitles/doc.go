// Package subtitles holds the in-memory subtitle timeline and the operations
// over it: the strict SRT codec (Parse/Serialize), overlap-based merging of two
// timelines, content validation, and the compact text export used to paste
// subtitles into size-limited prompts.
//
// Every operation returns a freshly built Timeline; inputs are never mutated.
package subtitles
