package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"subforge/internal/services"
)

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, services.Wrap(services.ErrValidation, "input", "validate", "no such file", nil))
	out := buf.String()
	requireContains(t, out, "Error: ")
	requireContains(t, out, "no such file")
	requireContains(t, out, "Hint: check the command flags and the input file")
	requireContains(t, out, "Run subforge help <command> for usage.")

	buf.Reset()
	printError(&buf, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "command failed", errors.New("exit status 1")))
	out = buf.String()
	requireContains(t, out, "Hint: run subforge doctor")
	if strings.Contains(out, "for usage") {
		t.Fatalf("tool failures should not point at usage:\n%s", out)
	}
}
