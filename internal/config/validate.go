package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"subforge/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if c.Compress.MaxChars < minCompressChars {
		return invalid("compress.max_chars must be at least %d", minCompressChars)
	}
	return c.validateLogging()
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero":
	case "pyannote":
		if c.Transcription.HFToken == "" {
			return invalid("transcription.hf_token must be set when transcription.vad_method is pyannote (or set HF_TOKEN)")
		}
	default:
		return invalid("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.Parallelism < 1 || c.Transcription.Parallelism > maxParallelism {
		return invalid("transcription.parallelism must be between 1 and %d", maxParallelism)
	}
	if c.Transcription.AudioTrack < -1 {
		return invalid("transcription.audio_track must be >= -1")
	}
	return nil
}

func (c *Config) validateOutput() error {
	name := c.Output.DefaultName
	if !strings.EqualFold(filepath.Ext(name), ".srt") {
		return invalid("output.default_name must end with .srt, got %q", name)
	}
	if filepath.Base(name) != name {
		return invalid("output.default_name must be a file name without directories, got %q", name)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) == "" {
		return invalid("cache.path must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return invalid("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
}

func invalid(format string, args ...any) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", fmt.Sprintf(format, args...), nil)
}
