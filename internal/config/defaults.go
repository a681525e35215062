package config

const (
	defaultConfigPath       = "~/.config/subforge/config.toml"
	projectConfigName       = "subforge.toml"
	defaultWorkDir          = "~/.local/share/subforge/work"
	defaultLogDir           = "~/.local/share/subforge/logs"
	defaultCacheFileName    = "chunks.db"
	defaultModel            = "large-v3"
	defaultVADMethod        = "silero"
	defaultParallelism      = 1
	defaultAudioTrack       = -1
	maxParallelism          = 16
	defaultOutputName       = "output.srt"
	defaultCompressChars    = 4000
	minCompressChars        = 64
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		Transcription: Transcription{
			Model:       defaultModel,
			VADMethod:   defaultVADMethod,
			Parallelism: defaultParallelism,
			AudioTrack:  defaultAudioTrack,
		},
		Output: Output{
			DefaultName:   defaultOutputName,
			BackupOnMerge: true,
		},
		Cache: Cache{
			Enabled: true,
		},
		Compress: Compress{
			MaxChars: defaultCompressChars,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
