package logging

import "strings"

// FormatSubject builds the chunk/stage subject string used in console output.
func FormatSubject(stage, chunkID string) string {
	stage = strings.TrimSpace(stage)
	chunkID = strings.TrimSpace(chunkID)
	switch {
	case chunkID != "" && stage != "":
		return chunkID + " (" + stage + ")"
	case chunkID != "":
		return chunkID
	default:
		return stage
	}
}
