package services_test

import (
	"errors"
	"strings"
	"testing"

	"subforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"format", services.Wrap(services.ErrFormat, "timecode", "parse", "bad", nil), services.ExitInvalidInput},
		{"parse", services.Wrap(services.ErrParse, "subtitles", "parse", "block 2", nil), services.ExitInvalidInput},
		{"validation", services.Wrap(services.ErrValidation, "planner", "", "end before start", nil), services.ExitInvalidInput},
		{"conflict", services.Wrap(services.ErrConflict, "planner", "", "both", nil), services.ExitInvalidInput},
		{"tool", services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "", errors.New("exit 1")), services.ExitExternalTool},
		{"other", errors.New("io"), services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHintFollowsMarker(t *testing.T) {
	if services.Hint(nil) != "" {
		t.Fatal("nil error should have no hint")
	}
	tool := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", nil)
	if !strings.Contains(services.Hint(tool), "doctor") {
		t.Fatalf("unexpected hint %q", services.Hint(tool))
	}
	conflict := services.Wrap(services.ErrConflict, "planner", "parse", "both set", nil)
	if !strings.Contains(services.Hint(conflict), "--checkpoints") {
		t.Fatalf("unexpected hint %q", services.Hint(conflict))
	}
	if services.Hint(errors.New("other")) != "check logs for details" {
		t.Fatal("unclassified errors should get the generic hint")
	}
}
