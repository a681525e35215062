package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subforge/internal/logging"
)

func TestOpenCreatesRunDirectory(t *testing.T) {
	root := t.TempDir()
	ws, err := Open(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !strings.HasPrefix(ws.RunID(), RunPrefix) {
		t.Fatalf("unexpected run id %q", ws.RunID())
	}
	if filepath.Dir(ws.Dir()) != root {
		t.Fatalf("run dir %q not under %q", ws.Dir(), root)
	}
	if info, err := os.Stat(ws.Dir()); err != nil || !info.IsDir() {
		t.Fatalf("run dir missing: %v", err)
	}

	other, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open second: %v", err)
	}
	if other.RunID() == ws.RunID() {
		t.Fatal("run ids should be unique")
	}
}

func TestOpenRequiresRoot(t *testing.T) {
	if _, err := Open("  ", nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestChunkPaths(t *testing.T) {
	ws, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	id := "chunk-0002_000500_001000"
	if got := ws.ChunkAudioPath(id); got != filepath.Join(ws.Dir(), "audio", id+".wav") {
		t.Fatalf("ChunkAudioPath = %q", got)
	}
	if got := ws.ChunkResultDir(id); got != filepath.Join(ws.Dir(), "results", id) {
		t.Fatalf("ChunkResultDir = %q", got)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ws, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.Dir(), "scratch"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := ws.Release(); err != nil {
			t.Fatalf("Release #%d: %v", i+1, err)
		}
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Fatal("run directory should be removed")
	}

	var nilWS *Workspace
	if err := nilWS.Release(); err != nil {
		t.Fatalf("nil Release: %v", err)
	}
}

func TestReleaseKeep(t *testing.T) {
	ws, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ws.Keep()
	if err := ws.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Dir()); err != nil {
		t.Fatalf("kept workspace removed: %v", err)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Failed) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRuns(t *testing.T) {
	root := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldRun := filepath.Join(root, RunPrefix+"old")
	foreign := filepath.Join(root, "not-a-run")
	recentRun := filepath.Join(root, RunPrefix+"recent")
	for _, dir := range []string{oldRun, foreign, recentRun} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, dir := range []string{oldRun, foreign} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatal(err)
		}
	}

	result := CleanStale(root, time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0].Path != oldRun {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign directory should be left alone")
	}
	if _, err := os.Stat(recentRun); err != nil {
		t.Error("recent run should still exist")
	}
}

func TestListRuns(t *testing.T) {
	root := t.TempDir()
	run := filepath.Join(root, RunPrefix+"a")
	if err := os.MkdirAll(filepath.Join(run, "audio"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(run, "audio", "c.wav"), make([]byte, 128), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "other"), 0o755); err != nil {
		t.Fatal(err)
	}

	runs, err := ListRuns(root)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Size != 128 || runs[0].Name != RunPrefix+"a" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestCleanStaleZeroAgeRemovesAll(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{RunPrefix + "a", RunPrefix + "b"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	result := CleanStale(root, 0, nil)
	if len(result.Removed) != 2 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
