package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants shared by both loops. Role
// specific requirements (mount target, transcoder binary) are verified at
// daemon startup where they apply.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Overseerr.URL) == "" {
		problems = append(problems, "overseerr.url is required")
	}
	if strings.TrimSpace(c.Overseerr.APIKey) == "" {
		problems = append(problems, "overseerr.api_key is required")
	}
	if strings.TrimSpace(c.Xthor.Passkey) == "" {
		problems = append(problems, "xthor.passkey is required")
	}
	if strings.TrimSpace(c.Transmission.URL) == "" {
		problems = append(problems, "transmission.url is required")
	}
	if strings.TrimSpace(c.Downloads.BaseURL) == "" {
		problems = append(problems, "downloads.base_url is required")
	}
	if c.Xthor.SimilarityThreshold < 0 || c.Xthor.SimilarityThreshold > 1 {
		problems = append(problems, "xthor.similarity_threshold must be between 0 and 1")
	}
	if c.Workflow.PollInterval <= 0 {
		problems = append(problems, "workflow.poll_interval must be positive")
	}
	if c.Workflow.IndexerDelay < 0 {
		problems = append(problems, "workflow.indexer_delay must not be negative")
	}
	if c.Workflow.ReleaseWindowDays < 0 {
		problems = append(problems, "workflow.release_window_days must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	if len(problems) == 1 {
		return errors.New(problems[0])
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}

// ValidateEncoderRole checks the settings only the encoder loop depends on.
func (c *Config) ValidateEncoderRole() error {
	var problems []string

	if strings.TrimSpace(c.JuiceFS.MetaURL) == "" {
		problems = append(problems, "juicefs.meta_url is required for the encoder role")
	}
	if strings.TrimSpace(c.JuiceFS.Bucket) == "" {
		problems = append(problems, "juicefs.bucket is required for the encoder role")
	}
	if strings.TrimSpace(c.HandBrake.Preset) == "" {
		problems = append(problems, "handbrake.preset is required for the encoder role")
	}
	if strings.TrimSpace(c.Encoding.TargetCodec) == "" {
		problems = append(problems, "encoding.target_codec is required for the encoder role")
	}

	if len(problems) == 0 {
		return nil
	}
	if len(problems) == 1 {
		return errors.New(problems[0])
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}
