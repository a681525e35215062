package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/services"
	"subforge/internal/testsupport"
)

func TestMergeCommandPrintsMergedSubtitles(t *testing.T) {
	env := setupCLITestEnv(t)
	base := filepath.Join(env.baseDir, "base.srt")
	overlay := filepath.Join(env.baseDir, "overlay.srt")
	testsupport.WriteSRT(t, base,
		"00:00:00,000 --> 00:00:05,000", "A",
		"00:00:05,000 --> 00:00:10,000", "B",
	)
	testsupport.WriteSRT(t, overlay, "00:00:04,000 --> 00:00:06,000", "X")

	out, _, err := runCLI(t, env, "merge", base, overlay)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if strings.TrimSpace(out) != "1\n00:00:04,000 --> 00:00:06,000\nX" {
		t.Fatalf("unexpected merge output:\n%s", out)
	}
}

func TestMergeCommandWritesOutputWithBackup(t *testing.T) {
	env := setupCLITestEnv(t)
	base := filepath.Join(env.baseDir, "base.srt")
	overlay := filepath.Join(env.baseDir, "overlay.srt")
	testsupport.WriteSRT(t, base,
		"00:00:00,000 --> 00:00:01,000", "keep",
		"00:00:10,000 --> 00:00:12,000", "old",
	)
	testsupport.WriteSRT(t, overlay, "00:00:11,000 --> 00:00:13,000", "new")
	original := testsupport.ReadFile(t, base)

	out, _, err := runCLI(t, env, "merge", base, overlay, "-o", base)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	requireContains(t, out, "Wrote 2 cues to "+base)
	requireContains(t, out, "Replaced 1 base cues with 1 overlay cues")

	matches, err := filepath.Glob(base + ".*.bak")
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one backup, got %v (err %v)", matches, err)
	}
	if got := testsupport.ReadFile(t, matches[0]); got != original {
		t.Fatalf("backup differs from original:\n%s", got)
	}
	requireContains(t, testsupport.ReadFile(t, base), "2\n00:00:11,000 --> 00:00:13,000\nnew")
	if _, err := os.Stat(base + ".lock"); !os.IsNotExist(err) {
		t.Fatal("lock file should be removed")
	}
}

func TestMergeCommandRejectsMalformedInput(t *testing.T) {
	env := setupCLITestEnv(t)
	base := filepath.Join(env.baseDir, "base.srt")
	overlay := filepath.Join(env.baseDir, "overlay.srt")
	testsupport.WriteSRT(t, base, "00:00:00,000 --> 00:00:01,000", "ok")
	testsupport.WriteFile(t, overlay, "1\n00:00:00 --> 00:00:01\nbroken\n")

	_, _, err := runCLI(t, env, "merge", base, overlay)
	requireExitCode(t, err, services.ExitInvalidInput)
	requireContains(t, err.Error(), "block 1")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.srt")
	testsupport.WriteSRT(t, clean,
		"00:00:00,000 --> 00:00:01,000", "one",
		"00:00:01,000 --> 00:00:02,000", "two",
	)
	out, _, err := runCLI(t, nil, "validate", clean)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "2 cues")
	requireContains(t, out, "No problems found")

	overlapping := filepath.Join(dir, "overlap.srt")
	testsupport.WriteSRT(t, overlapping,
		"00:00:00,000 --> 00:00:03,000", "one",
		"00:00:02,000 --> 00:00:04,000", "two",
	)
	out, _, err = runCLI(t, nil, "validate", overlapping, "--json")
	requireExitCode(t, err, services.ExitInvalidInput)
	var view validateView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode validate json: %v\n%s", err, out)
	}
	if view.Valid || view.Cues != 2 || len(view.Issues) == 0 || view.Issues[0].Kind != "overlap" {
		t.Fatalf("unexpected report: %+v", view)
	}
}

func TestValidateCommandReportsMalformedBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.srt")
	testsupport.WriteFile(t, path, "1\n00:00:00,000 --> 00:00:01,000\nfine\n\n2\nno timing here\n")

	out, _, err := runCLI(t, nil, "validate", path, "--json")
	requireExitCode(t, err, services.ExitInvalidInput)
	var view validateView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode validate json: %v\n%s", err, out)
	}
	if view.Block != 2 || view.Error == "" {
		t.Fatalf("unexpected report: %+v", view)
	}
}

func TestCompressCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "talk.srt")
	testsupport.WriteSRT(t, path,
		"00:00:00,000 --> 00:00:01,000", "Hello\nworld",
		"00:00:01,000 --> 00:00:02,000", "a|b",
	)

	out, _, err := runCLI(t, env, "compress", path)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if strings.TrimSpace(out) != "0,1000,Hello<br>world|1000,2000,ab" {
		t.Fatalf("unexpected export: %q", out)
	}

	dest := filepath.Join(env.baseDir, "talk.txt")
	out, _, err = runCLI(t, env, "compress", path, "--max-chars", "20", "-o", dest)
	if err != nil {
		t.Fatalf("compress -o: %v", err)
	}
	requireContains(t, out, "Wrote 2 chunks to "+dest)
	if got := testsupport.ReadFile(t, dest); got != "0,1000,Hello<br>world\n\n1000,2000,ab\n" {
		t.Fatalf("unexpected file export: %q", got)
	}

	_, _, err = runCLI(t, env, "compress", path, "--max-chars", "0")
	requireExitCode(t, err, services.ExitInvalidInput)
}

func TestCoalesceCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "results")
	testsupport.WriteFile(t, filepath.Join(dir, "part_000000_000500.json"),
		`{"segments":[{"start":0,"end":1,"text":"same"},{"start":1,"end":2,"text":"same"}]}`)
	testsupport.WriteFile(t, filepath.Join(dir, "part_000500_001000.json"),
		`{"segments":[{"start":0,"end":1,"text":"later"}]}`)

	out, _, err := runCLI(t, env, "coalesce", dir)
	if err != nil {
		t.Fatalf("coalesce: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,000\nsame\n\n2\n00:05:00,000 --> 00:05:01,000\nlater"
	if strings.TrimSpace(out) != want {
		t.Fatalf("unexpected coalesce output:\n%s", out)
	}

	dest := filepath.Join(env.baseDir, "joined.srt")
	out, _, err = runCLI(t, env, "coalesce", dir, "-o", dest)
	if err != nil {
		t.Fatalf("coalesce -o: %v", err)
	}
	requireContains(t, out, "Wrote 2 cues from 2 chunks (3 frames)")
	if got := testsupport.ReadFile(t, dest); got != want+"\n" {
		t.Fatalf("unexpected file:\n%s", got)
	}
}
