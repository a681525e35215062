package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subforge/internal/config"
	"subforge/internal/services"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HF_TOKEN", "")
	t.Setenv("SUBFORGE_LANGUAGE", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "subforge", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if want := filepath.Join(home, ".local", "share", "subforge", "work"); cfg.Paths.WorkDir != want {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, want)
	}
	if want := filepath.Join(home, ".cache", "subforge", "chunks.db"); cfg.Cache.Path != want {
		t.Fatalf("unexpected cache path: got %q want %q", cfg.Cache.Path, want)
	}
	if cfg.Output.DefaultName != "output.srt" {
		t.Fatalf("unexpected default name %q", cfg.Output.DefaultName)
	}
	if cfg.Transcription.Language != "" {
		t.Fatalf("expected auto-detect language, got %q", cfg.Transcription.Language)
	}
	if cfg.Transcription.Parallelism != 1 || cfg.Compress.MaxChars != 4000 {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Transcription, cfg.Compress)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "subforge.toml")

	type payload struct {
		Transcription struct {
			Language    string `toml:"language"`
			Parallelism int    `toml:"parallelism"`
		} `toml:"transcription"`
		Output struct {
			DefaultName string `toml:"default_name"`
		} `toml:"output"`
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Transcription.Language = "German"
	custom.Transcription.Parallelism = 4
	custom.Output.DefaultName = "subs.SRT"
	custom.Paths.WorkDir = filepath.Join(dir, "work")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected %q to be loaded, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Transcription.Language != "de" {
		t.Fatalf("expected normalized language de, got %q", cfg.Transcription.Language)
	}
	if cfg.Transcription.Parallelism != 4 {
		t.Fatalf("unexpected parallelism %d", cfg.Transcription.Parallelism)
	}
	if cfg.Output.DefaultName != "subs.SRT" {
		t.Fatalf("unexpected default name %q", cfg.Output.DefaultName)
	}
	if cfg.Paths.WorkDir != filepath.Join(dir, "work") {
		t.Fatalf("unexpected work dir %q", cfg.Paths.WorkDir)
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[transcription]\nvad_method = \"pyannote\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HF_TOKEN=from-dotenv\nSUBFORGE_LANGUAGE=fr\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	os.Unsetenv("HF_TOKEN")
	os.Unsetenv("SUBFORGE_LANGUAGE")
	t.Cleanup(func() {
		os.Unsetenv("HF_TOKEN")
		os.Unsetenv("SUBFORGE_LANGUAGE")
	})

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.HFToken != "from-dotenv" {
		t.Fatalf("expected token from .env, got %q", cfg.Transcription.HFToken)
	}
	if cfg.Transcription.Language != "fr" {
		t.Fatalf("expected language from .env, got %q", cfg.Transcription.Language)
	}

	t.Setenv("HF_TOKEN", "from-shell")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.HFToken != "from-shell" {
		t.Fatalf("expected shell environment to win, got %q", cfg.Transcription.HFToken)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown vad", "[transcription]\nvad_method = \"webrtc\"\n", "vad_method"},
		{"pyannote without token", "[transcription]\nvad_method = \"pyannote\"\n", "hf_token"},
		{"parallelism", "[transcription]\nparallelism = 99\n", "parallelism"},
		{"output name", "[output]\ndefault_name = \"out.txt\"\n", "default_name"},
		{"output dir", "[output]\ndefault_name = \"a/out.srt\"\n", "default_name"},
		{"language", "[transcription]\nlanguage = \"klingon!\"\n", "language"},
		{"log level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
		{"compress", "[compress]\nmax_chars = 10\n", "max_chars"},
		{"unknown key", "[paths]\nstaging_dir = \"/tmp\"\n", "staging_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
			if services.ExitCode(err) != services.ExitInvalidInput {
				t.Fatalf("expected input exit code for %v", err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	defaults := config.Default()
	if cfg.Transcription.Model != defaults.Transcription.Model || cfg.Compress.MaxChars != defaults.Compress.MaxChars {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
}

func TestValidateIsExported(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Parallelism = 0
	if err := cfg.Validate(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
