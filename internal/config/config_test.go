package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"irilis/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func minimalConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	return `
[paths]
staging_dir = "` + filepath.Join(base, "staging") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[overseerr]
url = "http://overseerr.test/"
api_key = "key-123"

[xthor]
passkey = "pk-123"

[transmission]
url = "http://transmission.test/transmission/rpc"

[downloads]
base_url = "http://downloads.test/"
`
}

func TestLoadAppliesDefaultsAndNormalizes(t *testing.T) {
	path := writeConfig(t, minimalConfig(t))

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config at %q", resolved)
	}

	if cfg.Xthor.URL != "https://api.xthor.tk" {
		t.Fatalf("expected default indexer url, got %q", cfg.Xthor.URL)
	}
	if cfg.Xthor.SimilarityThreshold != 0.7 || cfg.Xthor.MultiMarker != "multi" {
		t.Fatalf("unexpected matcher defaults: %#v", cfg.Xthor)
	}
	if cfg.Workflow.PollInterval != 15 || cfg.Workflow.ReleaseWindowDays != 7 {
		t.Fatalf("unexpected workflow defaults: %#v", cfg.Workflow)
	}
	if cfg.Encoding.TargetCodec != "hevc" {
		t.Fatalf("unexpected target codec %q", cfg.Encoding.TargetCodec)
	}

	// Trailing slashes are trimmed during normalization.
	if strings.HasSuffix(cfg.Overseerr.URL, "/") || strings.HasSuffix(cfg.Downloads.BaseURL, "/") {
		t.Fatalf("urls should be trimmed: %q, %q", cfg.Overseerr.URL, cfg.Downloads.BaseURL)
	}
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
[overseerr]
url = "http://overseerr.test"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation failure for missing credentials")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, strings.Replace(minimalConfig(t),
		`passkey = "pk-123"`,
		"passkey = \"pk-123\"\nsimilarity_threshold = 1.5", 1))
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation failure for out-of-range threshold")
	}
}

func TestValidateEncoderRole(t *testing.T) {
	cfg := config.Default()
	cfg.JuiceFS.MetaURL = ""
	if err := cfg.ValidateEncoderRole(); err == nil {
		t.Fatal("expected encoder role validation failure without meta url")
	}

	cfg.JuiceFS.MetaURL = "redis://meta.test:6379/1"
	cfg.JuiceFS.Bucket = "movies"
	if err := cfg.ValidateEncoderRole(); err != nil {
		t.Fatalf("encoder role validation failed: %v", err)
	}
}

func TestMountPointJoinsBucket(t *testing.T) {
	cfg := config.Default()
	cfg.JuiceFS.MountDir = "/mnt/jfs"
	cfg.JuiceFS.Bucket = "movies"
	if got := cfg.MountPoint(); got != filepath.Join("/mnt/jfs", "movies") {
		t.Fatalf("unexpected mount point %q", got)
	}
}

func TestSampleConfigCoversEverySection(t *testing.T) {
	sample := config.SampleConfig()
	for _, section := range []string{
		"[paths]", "[overseerr]", "[xthor]", "[transmission]",
		"[downloads]", "[handbrake]", "[juicefs]", "[encoding]",
		"[workflow]", "[logging]",
	} {
		if !strings.Contains(sample, section) {
			t.Fatalf("sample config missing %s", section)
		}
	}
}

func TestLoadMissingFileUsesDefaultsButFailsValidation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	if _, _, _, err := config.Load(missing); err == nil {
		t.Fatal("defaults alone lack credentials and must fail validation")
	}
}
