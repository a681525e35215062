// Package logs reads the persistent subforge log for `subforge logs`.
//
// Last returns the final N lines of the file with bounded memory, and Follow
// polls from a byte offset, emitting only complete lines and restarting from
// the top when the file is truncated or rotated underneath it. Both accept a
// Filter so callers can narrow output to one run or event.
package logs
