package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Overseerr contains configuration for the request-tracking service.
type Overseerr struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Xthor contains configuration for the torrent indexer.
type Xthor struct {
	URL                 string  `toml:"url"`
	Passkey             string  `toml:"passkey"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MultiMarker         string  `toml:"multi_marker"`
}

// Transmission contains configuration for the download client RPC endpoint.
type Transmission struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Downloads contains configuration for the HTTP mirror serving completed
// transfers (the nginx front in the reference deployment).
type Downloads struct {
	BaseURL string `toml:"base_url"`
}

// HandBrake contains configuration for the external transcoder.
type HandBrake struct {
	Binary    string `toml:"binary"`
	Preset    string `toml:"preset"`
	PresetDir string `toml:"preset_dir"`
}

// JuiceFS contains configuration for the network filesystem mount.
type JuiceFS struct {
	Binary   string `toml:"binary"`
	MetaURL  string `toml:"meta_url"`
	Bucket   string `toml:"bucket"`
	MountDir string `toml:"mount_dir"`
}

// Encoding contains configuration for codec inspection and target format.
type Encoding struct {
	TargetCodec   string `toml:"target_codec"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Workflow contains configuration for loop timing.
type Workflow struct {
	PollInterval      int     `toml:"poll_interval"`
	IndexerDelay      float64 `toml:"indexer_delay"`
	ReleaseWindowDays int     `toml:"release_window_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for irilis.
type Config struct {
	Paths        Paths        `toml:"paths"`
	Overseerr    Overseerr    `toml:"overseerr"`
	Xthor        Xthor        `toml:"xthor"`
	Transmission Transmission `toml:"transmission"`
	Downloads    Downloads    `toml:"downloads"`
	HandBrake    HandBrake    `toml:"handbrake"`
	JuiceFS      JuiceFS      `toml:"juicefs"`
	Encoding     Encoding     `toml:"encoding"`
	Workflow     Workflow     `toml:"workflow"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/irilis/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	expansions := []*string{
		&c.Paths.StagingDir,
		&c.Paths.LogDir,
		&c.HandBrake.PresetDir,
		&c.JuiceFS.MountDir,
	}
	for _, field := range expansions {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Overseerr.URL = strings.TrimRight(strings.TrimSpace(c.Overseerr.URL), "/")
	c.Xthor.URL = strings.TrimRight(strings.TrimSpace(c.Xthor.URL), "/")
	c.Downloads.BaseURL = strings.TrimRight(strings.TrimSpace(c.Downloads.BaseURL), "/")
	c.Transmission.URL = strings.TrimSpace(c.Transmission.URL)
	c.Encoding.TargetCodec = strings.ToLower(strings.TrimSpace(c.Encoding.TargetCodec))
	return nil
}

// EnsureDirectories creates the directories both loops depend on.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir, c.Paths.LogDir, c.JuiceFS.MountDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MountPoint returns the directory the network filesystem is mounted at and
// the path encoded output is relocated into.
func (c *Config) MountPoint() string {
	return filepath.Join(c.JuiceFS.MountDir, c.JuiceFS.Bucket)
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
