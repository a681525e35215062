package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/config"
	"subforge/internal/services"
	"subforge/internal/testsupport"
)

const ffprobeStub = `#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_name":"mp3","codec_type":"audio","channels":2,"duration":"600.000"}],
 "format":{"filename":"talk.mp3","nb_streams":1,"duration":"600.000","size":"3145728","format_name":"mp3"}}
JSON
`

// ffmpegStub creates the destination file, which is always the last argument.
const ffmpegStub = `#!/bin/sh
for last; do :; done
: > "$last"
`

// uvxStub writes one recognizer segment whose text is the chunk name.
const uvxStub = `#!/bin/sh
audio=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    whisperx) shift; audio="$1" ;;
    --output_dir) shift; out="$1" ;;
  esac
  shift
done
name=$(basename "$audio" .wav)
printf '{"segments":[{"start":0.5,"end":1.5,"text":"%s"}]}' "$name" > "$out/$name.json"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("NO_COLOR", "1")
	defaults := []testsupport.ConfigOption{
		testsupport.WithParallelism(2),
		testsupport.WithStubbedBinaries(map[string]string{
			"ffprobe": ffprobeStub,
			"ffmpeg":  ffmpegStub,
			"uvx":     uvxStub,
		}),
	}
	cfg := testsupport.NewConfig(t, append(defaults, opts...)...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "subforge", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		binDir:     testsupport.BinDir(cfg),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
cache_dir = %q

[transcription]
parallelism = %d

[cache]
enabled = %t
path = %q

[logging]
level = "warn"
`,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Paths.CacheDir,
		cfg.Transcription.Parallelism,
		cfg.Cache.Enabled,
		cfg.Cache.Path,
	)
	testsupport.WriteFile(t, path, content)
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if env != nil && env.configPath != "" {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with exit code %d", want)
	}
	if got := services.ExitCode(err); got != want {
		t.Fatalf("exit code = %d, want %d (err: %v)", got, want, err)
	}
}
