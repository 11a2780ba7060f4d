package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"irilis/internal/logging"
	"irilis/internal/services"
)

// PassFunc runs one loop iteration.
type PassFunc func(ctx context.Context) error

// Loop repeatedly invokes a pass on a fixed interval. It is the scheduling
// harness for both the watcher and the encoder.
type Loop struct {
	name     string
	interval time.Duration
	logger   *slog.Logger
	pass     PassFunc
}

// NewLoop constructs a loop around a pass function.
func NewLoop(name string, interval time.Duration, logger *slog.Logger, pass PassFunc) *Loop {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Loop{
		name:     name,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, name),
		pass:     pass,
	}
}

// Run executes passes until the context is cancelled or a pass fails
// fatally. Cancellation is a clean stop and returns nil; a fatal pass error
// is returned to the caller, which exits the process non-zero so the outer
// supervisor can intervene. Transient pass errors are logged and the loop
// keeps going.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop started", logging.Duration("interval", l.interval))

	for {
		passID := uuid.NewString()
		passLogger := l.logger.With(logging.String(logging.FieldPassID, passID))

		err := l.pass(logging.ContextWithLogger(ctx, passLogger))
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			l.logger.Info("loop stopped")
			return nil
		case services.IsFatal(err):
			passLogger.Error("pass failed fatally, stopping loop", logging.Error(err))
			return err
		default:
			passLogger.Warn("pass failed, retrying next interval", logging.Error(err))
		}

		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return nil
		case <-time.After(l.interval):
		}
	}
}
