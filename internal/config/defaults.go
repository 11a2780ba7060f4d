package config

const (
	defaultStagingDir        = "~/.local/share/irilis/staging"
	defaultLogDir            = "~/.local/share/irilis/logs"
	defaultXthorURL          = "https://api.xthor.tk"
	defaultSimilarity        = 0.7
	defaultMultiMarker       = "multi"
	defaultRequestTimeout    = 15
	defaultHandBrakeBinary   = "HandBrakeCLI"
	defaultHandBrakePreset   = "movie"
	defaultPresetDir         = "~/.config/irilis/presets"
	defaultJuiceFSBinary     = "juicefs"
	defaultMountDir          = "~/.local/share/irilis/juicefs"
	defaultTargetCodec       = "hevc"
	defaultFFprobeBinary     = "ffprobe"
	defaultPollInterval      = 15
	defaultIndexerDelay      = 2.5
	defaultReleaseWindowDays = 7
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Overseerr: Overseerr{
			RequestTimeout: defaultRequestTimeout,
		},
		Xthor: Xthor{
			URL:                 defaultXthorURL,
			SimilarityThreshold: defaultSimilarity,
			MultiMarker:         defaultMultiMarker,
		},
		Transmission: Transmission{
			RequestTimeout: defaultRequestTimeout,
		},
		HandBrake: HandBrake{
			Binary:    defaultHandBrakeBinary,
			Preset:    defaultHandBrakePreset,
			PresetDir: defaultPresetDir,
		},
		JuiceFS: JuiceFS{
			Binary:   defaultJuiceFSBinary,
			MountDir: defaultMountDir,
		},
		Encoding: Encoding{
			TargetCodec:   defaultTargetCodec,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Workflow: Workflow{
			PollInterval:      defaultPollInterval,
			IndexerDelay:      defaultIndexerDelay,
			ReleaseWindowDays: defaultReleaseWindowDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
