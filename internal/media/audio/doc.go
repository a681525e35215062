// Package audio chooses which audio stream of a media file to transcribe.
//
// Select ranks the audio streams ffprobe reports: a stream tagged with the
// requested language wins, commentary and audio-description tracks are
// avoided, and the container's default flag and channel count break ties.
// Track numbers are positions among audio streams only, the form ffmpeg's
// "0:a:N" selector expects.
package audio
