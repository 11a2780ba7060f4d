package juicefs

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"irilis/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the mounter.
type Option func(*Mounter)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(m *Mounter) {
		if binary != "" {
			m.binary = binary
		}
	}
}

// Mounter wraps the juicefs mount subprocess.
type Mounter struct {
	binary string
}

// NewMounter constructs a mounter using defaults.
func NewMounter(opts ...Option) *Mounter {
	mounter := &Mounter{binary: "juicefs"}
	for _, opt := range opts {
		opt(mounter)
	}
	return mounter
}

// Mount mounts the filesystem described by metaURL at mountPoint in daemon
// mode. Called once at encoder startup; failure is fatal to the process.
func (m *Mounter) Mount(ctx context.Context, metaURL, mountPoint string) error {
	metaURL = strings.TrimSpace(metaURL)
	if metaURL == "" {
		return errors.New("juicefs meta url required")
	}
	mountPoint = strings.TrimSpace(mountPoint)
	if mountPoint == "" {
		return errors.New("juicefs mount point required")
	}

	args := []string{
		"mount", "-d",
		metaURL,
		mountPoint,
		"--get-timeout", "120",
		"--put-timeout", "120",
		"--io-retries", "20",
	}
	cmd := commandContext(ctx, m.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "juicefs", "mount",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}
