package testsupport

import (
	"path/filepath"
	"testing"

	"irilis/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and placeholder credentials that pass validation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.JuiceFS.MountDir = filepath.Join(base, "juicefs")
	cfg.JuiceFS.Bucket = "movies"
	cfg.JuiceFS.MetaURL = "sqlite3://meta.db"
	cfg.Overseerr.URL = "http://overseerr.test"
	cfg.Overseerr.APIKey = "test"
	cfg.Xthor.Passkey = "test"
	cfg.Transmission.URL = "http://transmission.test/transmission/rpc"
	cfg.Downloads.BaseURL = "http://downloads.test"
	cfg.Workflow.IndexerDelay = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithReleaseWindowDays overrides the actionable release window.
func WithReleaseWindowDays(days int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.ReleaseWindowDays = days
	}
}

// WithTargetCodec overrides the codec the encoder skips transcoding for.
func WithTargetCodec(codec string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Encoding.TargetCodec = codec
	}
}
