package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// WriteSRT writes an SRT fixture built from alternating "start --> end" and
// text lines, numbering blocks 1..N.
func WriteSRT(t testing.TB, path string, cues ...string) {
	t.Helper()

	if len(cues)%2 != 0 {
		t.Fatalf("WriteSRT needs time/text pairs, got %d values", len(cues))
	}
	var content string
	for i := 0; i < len(cues); i += 2 {
		if i > 0 {
			content += "\n"
		}
		content += strconv.Itoa(i/2+1) + "\n" + cues[i] + "\n" + cues[i+1] + "\n"
	}
	WriteFile(t, path, content)
}
