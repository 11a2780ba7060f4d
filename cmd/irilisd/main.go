package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"irilis/internal/config"
	"irilis/internal/logging"
	"irilis/internal/pipeline"
	"irilis/internal/queue"
)

// Exit codes distinguish startup problems (supervisor should not restart
// blindly) from runtime fatals (record left in place for recovery).
const (
	exitOK      = 0
	exitFatal   = 1
	exitStartup = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	role := flag.String("role", "all", "pipeline role: watcher, encoder, or all")
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return exitStartup
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Printf("prepare directories: %v", err)
		return exitStartup
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Printf("init logger: %v", err)
		return exitStartup
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return exitStartup
	}
	defer store.Close()

	switch *role {
	case "watcher", "encoder", "all":
	default:
		log.Printf("unknown role %q (want watcher, encoder, or all)", *role)
		return exitStartup
	}

	locks, err := acquireLocks(cfg, *role)
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		return exitStartup
	}
	defer releaseLocks(logger, locks)

	var loops []*pipeline.Loop
	switch *role {
	case "watcher":
		loop, err := buildWatcherLoop(cfg, store, logger)
		if err != nil {
			logger.Error("watcher startup failed", logging.Error(err))
			return exitStartup
		}
		loops = append(loops, loop)
	case "encoder":
		loop, err := buildEncoderLoop(ctx, cfg, store, logger)
		if err != nil {
			logger.Error("encoder startup failed", logging.Error(err))
			return exitStartup
		}
		loops = append(loops, loop)
	case "all":
		watcherLoop, err := buildWatcherLoop(cfg, store, logger)
		if err != nil {
			logger.Error("watcher startup failed", logging.Error(err))
			return exitStartup
		}
		encoderLoop, err := buildEncoderLoop(ctx, cfg, store, logger)
		if err != nil {
			logger.Error("encoder startup failed", logging.Error(err))
			return exitStartup
		}
		loops = append(loops, watcherLoop, encoderLoop)
	}

	logger.Info("irilisd started", logging.String("role", *role))
	if err := runLoops(ctx, cancel, loops); err != nil {
		logger.Error("pipeline stopped on fatal error", logging.Error(err))
		return exitFatal
	}

	logger.Info("irilisd shutting down")
	return exitOK
}

// runLoops drives all loops concurrently. The first fatal loop error
// cancels the rest and is returned.
func runLoops(ctx context.Context, cancel context.CancelFunc, loops []*pipeline.Loop) error {
	errs := make(chan error, len(loops))
	var wg sync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func(l *pipeline.Loop) {
			defer wg.Done()
			if err := l.Run(ctx); err != nil {
				errs <- err
				cancel()
			}
		}(loop)
	}
	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return fmt.Errorf("loop failed: %w", err)
	}
	return nil
}
