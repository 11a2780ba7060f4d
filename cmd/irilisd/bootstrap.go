package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"irilis/internal/config"
	"irilis/internal/encoder"
	"irilis/internal/logging"
	"irilis/internal/pipeline"
	"irilis/internal/queue"
	"irilis/internal/services/handbrake"
	"irilis/internal/services/juicefs"
	"irilis/internal/watcher"
)

// buildWatcherLoop wires the watcher and its pipeline loop.
func buildWatcherLoop(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*pipeline.Loop, error) {
	w, err := watcher.NewWatcher(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(cfg.Workflow.PollInterval) * time.Second
	return pipeline.NewLoop("watcher", interval, logger, w.Pass), nil
}

// buildEncoderLoop verifies the encoder's external tooling, mounts the
// storage filesystem, and wires the encoder loop. Any failure here means
// the role cannot run at all, so everything in this path is startup-fatal.
func buildEncoderLoop(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) (*pipeline.Loop, error) {
	if err := cfg.ValidateEncoderRole(); err != nil {
		return nil, err
	}

	transcoder := handbrake.NewCLI(
		handbrake.WithBinary(cfg.HandBrake.Binary),
		handbrake.WithPresetDir(cfg.HandBrake.PresetDir),
	)
	if err := transcoder.Check(ctx); err != nil {
		return nil, err
	}

	mounter := juicefs.NewMounter(juicefs.WithBinary(cfg.JuiceFS.Binary))
	if err := mounter.Mount(ctx, cfg.JuiceFS.MetaURL, cfg.JuiceFS.MountDir); err != nil {
		return nil, err
	}
	logger.Info("storage filesystem mounted",
		logging.String("mount_point", cfg.MountPoint()))

	enc, err := encoder.NewEncoder(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(cfg.Workflow.PollInterval) * time.Second
	return pipeline.NewLoop("encoder", interval, logger, enc.Pass), nil
}

// acquireLocks takes a non-blocking file lock per active role so two
// daemons never drive the same loop against one job store.
func acquireLocks(cfg *config.Config, role string) ([]*flock.Flock, error) {
	roles := []string{role}
	if role == "all" {
		roles = []string{"watcher", "encoder"}
	}

	var locks []*flock.Flock
	for _, name := range roles {
		lock := flock.New(filepath.Join(cfg.Paths.LogDir, "irilisd-"+name+".lock"))
		locked, err := lock.TryLock()
		if err != nil {
			releaseAll(locks)
			return nil, fmt.Errorf("lock %s role: %w", name, err)
		}
		if !locked {
			releaseAll(locks)
			return nil, fmt.Errorf("another irilisd already holds the %s role", name)
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

func releaseLocks(logger *slog.Logger, locks []*flock.Flock) {
	for _, lock := range locks {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release daemon lock", logging.Error(err))
		}
	}
}

func releaseAll(locks []*flock.Flock) {
	for _, lock := range locks {
		_ = lock.Unlock()
	}
}
