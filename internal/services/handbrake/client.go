package handbrake

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"irilis/internal/services"
)

var commandContext = exec.CommandContext

// Transcoder defines the encoding behaviour the encoder loop needs.
type Transcoder interface {
	Encode(ctx context.Context, inputPath, outputPath, preset string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithPresetDir overrides the directory preset definition files load from.
func WithPresetDir(dir string) Option {
	return func(c *CLI) {
		if dir != "" {
			c.presetDir = dir
		}
	}
}

// CLI wraps the HandBrakeCLI command-line transcoder.
type CLI struct {
	binary    string
	presetDir string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "HandBrakeCLI"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Check verifies the transcoder binary is present and runnable. A missing
// binary is a startup-fatal configuration problem, not a retry case.
func (c *CLI) Check(ctx context.Context) error {
	cmd := commandContext(ctx, c.binary, "--version")
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrConfiguration, "handbrake", "version probe",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Encode transcodes inputPath into outputPath using a named preset whose
// definition lives at <presetDir>/<preset>.json.
func (c *CLI) Encode(ctx context.Context, inputPath, outputPath, preset string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return errors.New("preset name required")
	}

	args := []string{
		"-i", inputPath,
		"-o", outputPath,
		"--preset-import-file", filepath.Join(c.presetDir, preset+".json"),
		"--preset", preset,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "handbrake", "encode",
			fmt.Sprintf("%s: %s", filepath.Base(inputPath), tail(string(output))), err)
	}
	return nil
}

// tail keeps error output readable; HandBrake logs every frame otherwise.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) <= 5 {
		return strings.Join(lines, " | ")
	}
	return strings.Join(lines[len(lines)-5:], " | ")
}

var _ Transcoder = (*CLI)(nil)
