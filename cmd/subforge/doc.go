// Package main hosts the subforge CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls on the internal
// packages: generate drives the transcription pipeline, plan previews chunk
// boundaries, merge/validate/compress/coalesce operate on subtitle files, and
// doctor, config and cache cover setup and maintenance. Configuration loading
// and logger construction live in commandContext so subcommands only wire
// flags to library calls.
package main
