package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormat        = errors.New("format error")
	ErrParse         = errors.New("parse error")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflicting input")
	ErrRange         = errors.New("range error")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Exit codes reported by the CLI.
const (
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitExternalTool = 3
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFormat), errors.Is(err, ErrParse), errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict), errors.Is(err, ErrRange), errors.Is(err, ErrConfiguration):
		return ExitInvalidInput
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout):
		return ExitExternalTool
	default:
		return ExitFailure
	}
}

// Hint returns a short next step for the failure class of err.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return "pass either --checkpoints or --segments, not both, and make sure no other run writes the same output"
	case errors.Is(err, ErrFormat), errors.Is(err, ErrParse), errors.Is(err, ErrRange):
		return "check time values and the subtitle file format"
	case errors.Is(err, ErrValidation):
		return "check the command flags and the input file"
	case errors.Is(err, ErrConfiguration):
		return "run subforge config validate"
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout):
		return "run subforge doctor to check ffmpeg, ffprobe and uvx"
	case errors.Is(err, ErrNotFound):
		return "check the path exists"
	default:
		return "check logs for details"
	}
}

// IsInputError reports whether err was caused by user-supplied input rather
// than the environment.
func IsInputError(err error) bool {
	return ExitCode(err) == ExitInvalidInput
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
