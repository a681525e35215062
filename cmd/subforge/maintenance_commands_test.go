package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/logging"
	"subforge/internal/services"
	"subforge/internal/testsupport"
)

func TestInspectCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := writeInput(t, env)

	out, _, err := runCLI(t, env, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Summary: mp3, 1 audio / 0 video streams, 00:10:00,000")
	requireContains(t, out, "Size: 3.0 MiB")
	requireContains(t, out, "Language: Auto-detect")
	requireContains(t, out, "Selected audio track: 0 (mp3 | 2ch, first_track)")
	requireContains(t, out, "audio")
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Config: "+env.configPath)
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Ready to generate subtitles")
}

func TestDoctorCommandReportsMissingTool(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", env.binDir)
	if err := os.Remove(filepath.Join(env.binDir, "uvx")); err != nil {
		t.Fatalf("remove stub: %v", err)
	}

	out, _, err := runCLI(t, env, "doctor")
	requireExitCode(t, err, services.ExitExternalTool)
	requireContains(t, out, "MISSING")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Audio track: auto")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, env, "config", "init", "--path", target)
	requireExitCode(t, err, services.ExitInvalidInput)

	out, _, err = runCLI(t, env, "config", "init", "--stdout")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	if out != testsupport.ReadFile(t, target) {
		t.Fatalf("--stdout should print the file config init writes:\n%s", out)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	input := writeInput(t, env)
	if _, _, err := runCLI(t, env, "generate", "-i", input, "-c", "2:00,4:00"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, _, err := runCLI(t, env, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 3")
	requireContains(t, out, "Frames:  3")

	out, _, err = runCLI(t, env, "cache", "clear", "--older-than", "720h")
	if err != nil {
		t.Fatalf("cache clear --older-than: %v", err)
	}
	requireContains(t, out, "No cache entries removed")

	out, _, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 3 cache entries")

	stats, err := testsupport.MustOpenCache(t, env.cfg).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected empty cache, found %d entries", stats.Entries)
	}
}

func TestUnknownLogFormatIsRejected(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "--log-format", "xml", "doctor")
	requireExitCode(t, err, services.ExitInvalidInput)
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log entries available")

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName),
		`{"msg":"stage started","run_id":"r1","stage":"plan"}`+"\n"+
			`{"msg":"stage started","run_id":"r2","stage":"plan"}`+"\n"+
			`{"msg":"stage completed","run_id":"r2","stage":"plan"}`+"\n")

	out, _, err = runCLI(t, env, "logs", "-n", "1")
	if err != nil {
		t.Fatalf("logs -n 1: %v", err)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	requireContains(t, out, "stage completed")

	out, _, err = runCLI(t, env, "logs", "-n", "0", "--run", "r2", "--grep", "started")
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	if strings.TrimSpace(out) != `{"msg":"stage started","run_id":"r2","stage":"plan"}` {
		t.Fatalf("unexpected filtered output %q", out)
	}

	_, _, err = runCLI(t, env, "logs", "--lines=-1")
	requireExitCode(t, err, services.ExitInvalidInput)
}

func TestWorkListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "work", "list")
	if err != nil {
		t.Fatalf("work list: %v", err)
	}
	requireContains(t, out, "No run directories")

	input := writeInput(t, env)
	if _, _, err := runCLI(t, env, "generate", "-i", input, "--keep-work"); err != nil {
		t.Fatalf("generate --keep-work: %v", err)
	}

	out, _, err = runCLI(t, env, "work", "list")
	if err != nil {
		t.Fatalf("work list: %v", err)
	}
	requireContains(t, out, "run-")
	requireContains(t, out, "1 runs")

	out, _, err = runCLI(t, env, "work", "clean", "--older-than", "1h")
	if err != nil {
		t.Fatalf("work clean --older-than: %v", err)
	}
	requireContains(t, out, "No run directories removed")

	out, _, err = runCLI(t, env, "work", "clean")
	if err != nil {
		t.Fatalf("work clean: %v", err)
	}
	requireContains(t, out, "Removed 1 run directories")
}
