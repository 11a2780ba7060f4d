package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"irilis/internal/config"
	"irilis/internal/logging"
	"irilis/internal/media/ffprobe"
	"irilis/internal/queue"
	"irilis/internal/services"
	"irilis/internal/services/handbrake"
	"irilis/internal/services/transmission"
)

// TransferClient exposes the download client operations the encoder needs.
type TransferClient interface {
	Progress(ctx context.Context, id int64) (float64, error)
	Files(ctx context.Context, id int64) ([]transmission.TransferFile, error)
	FetchFile(ctx context.Context, id int64, name, destDir string) (string, error)
}

// CodecInspector reports a media file's video codec.
type CodecInspector interface {
	VideoCodec(ctx context.Context, path string) (string, error)
}

// Encoder drives completed transfers through fetch, transcode, and
// relocation into long-term storage. It is the only writer of job status
// transitions after insert.
type Encoder struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	transfers  TransferClient
	transcoder handbrake.Transcoder
	inspector  CodecInspector
	targetDir  string
}

// NewEncoder constructs an encoder with real service clients from config.
func NewEncoder(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Encoder, error) {
	transfers, err := transmission.New(cfg.Transmission.URL, cfg.Transmission.Username,
		cfg.Transmission.Password, cfg.Downloads.BaseURL,
		time.Duration(cfg.Transmission.RequestTimeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("transmission client: %w", err)
	}
	transcoder := handbrake.NewCLI(
		handbrake.WithBinary(cfg.HandBrake.Binary),
		handbrake.WithPresetDir(cfg.HandBrake.PresetDir),
	)
	inspector := &ffprobeInspector{binary: cfg.Encoding.FFprobeBinary}
	return NewEncoderWithDependencies(cfg, store, logger, transfers, transcoder, inspector), nil
}

// NewEncoderWithDependencies allows injecting collaborators (used in tests).
func NewEncoderWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	transfers TransferClient,
	transcoder handbrake.Transcoder,
	inspector CodecInspector,
) *Encoder {
	return &Encoder{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "encoder"),
		transfers:  transfers,
		transcoder: transcoder,
		inspector:  inspector,
		targetDir:  cfg.MountPoint(),
	}
}

// Pass runs one encoder iteration. Interrupted jobs (already in encoding
// status) are drained before new completions so recovery work finishes
// before anything else starts. Fatal errors abort the pass; transient
// failures defer the job to the next pass.
func (e *Encoder) Pass(ctx context.Context) error {
	passLogger := logging.WithContext(ctx, e.logger)

	recovering, err := e.store.ItemsByStatus(ctx, queue.StatusEncoding)
	if err != nil {
		return err
	}
	for _, item := range recovering {
		passLogger.Warn("job did not finish its previous encode, reprocessing",
			logging.Int64(logging.FieldJobID, item.JobID),
			logging.String("title", item.Title),
		)
		if err := e.processJob(ctx, item); err != nil {
			if services.IsFatal(err) || errors.Is(err, context.Canceled) {
				return err
			}
			e.logJobDeferred(item, err)
		}
	}

	pending, err := e.store.ItemsByStatus(ctx, queue.StatusDownloading)
	if err != nil {
		return err
	}
	for _, item := range pending {
		if err := e.processJob(ctx, item); err != nil {
			if services.IsFatal(err) || errors.Is(err, context.Canceled) {
				return err
			}
			e.logJobDeferred(item, err)
		}
	}

	return nil
}

// processJob drives a single job as far as it can go in this pass. A nil
// return means the job either finished or was left untouched for the next
// pass; errors carry the taxonomy markers from the services package.
func (e *Encoder) processJob(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger).With(
		logging.Int64(logging.FieldJobID, item.JobID),
		logging.String("title", item.Title),
	)

	progress, err := e.transfers.Progress(ctx, item.JobID)
	if err != nil {
		return err
	}
	if progress < 100 {
		logger.Debug("transfer incomplete, deferring",
			logging.Float64("percent", progress))
		return nil
	}

	logger.Info("processing completed transfer")

	if item.Status == queue.StatusDownloading {
		if err := e.store.UpdateStatus(ctx, item.JobID, queue.StatusEncoding); err != nil {
			return err
		}
		item.Status = queue.StatusEncoding
	}

	// The transcode step is not resumable mid-file; any partial state from
	// an interrupted attempt is discarded and the whole step redone.
	if err := e.resetScratch(); err != nil {
		return err
	}

	files, err := e.transfers.Files(ctx, item.JobID)
	if err != nil {
		return err
	}
	media, ok := largestFile(files)
	if !ok {
		return services.Wrap(services.ErrTransient, "encoder", "select file",
			fmt.Sprintf("transfer %d reports no files", item.JobID), nil)
	}

	logger.Info("fetching media file",
		logging.String("file", media.Name),
		logging.Int64("bytes", media.Size),
	)
	localPath, err := e.transfers.FetchFile(ctx, item.JobID, media.Name, e.scratchDir())
	if err != nil {
		return err
	}

	outputName := OutputFileName(item.Title, item.Year, item.ExternalID)
	outputPath := filepath.Join(e.scratchDir(), outputName)

	codec, err := e.inspector.VideoCodec(ctx, localPath)
	if err != nil {
		logger.Warn("codec inspection failed, transcoding anyway", logging.Error(err))
		codec = ""
	}

	if codec != "" && codec == e.cfg.Encoding.TargetCodec {
		logger.Info("file already in target codec, skipping transcode",
			logging.String("codec", codec))
		if err := os.Rename(localPath, outputPath); err != nil {
			return services.Wrap(services.ErrExternalTool, "encoder", "stage output", outputName, err)
		}
	} else {
		logger.Info("transcoding",
			logging.String("preset", e.cfg.HandBrake.Preset),
			logging.String("codec", codec),
		)
		if err := e.transcoder.Encode(ctx, localPath, outputPath, e.cfg.HandBrake.Preset); err != nil {
			return err
		}
	}

	finalPath := filepath.Join(e.targetDir, outputName)
	logger.Info("relocating to storage", logging.String("dest", finalPath))
	if err := moveFile(outputPath, finalPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "encoder", "relocate", outputName, err)
	}

	if err := e.store.UpdateStatus(ctx, item.JobID, queue.StatusDone); err != nil {
		return err
	}

	logger.Info("job complete", logging.String("file", outputName))
	return nil
}

func (e *Encoder) logJobDeferred(item *queue.Item, err error) {
	e.logger.Warn("job deferred to next pass",
		logging.Int64(logging.FieldJobID, item.JobID),
		logging.String("title", item.Title),
		logging.Error(err),
	)
}

func (e *Encoder) scratchDir() string {
	return e.cfg.Paths.StagingDir
}

func (e *Encoder) resetScratch() error {
	dir := e.scratchDir()
	if err := os.RemoveAll(dir); err != nil {
		return services.Wrap(services.ErrExternalTool, "encoder", "reset scratch", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "encoder", "reset scratch", dir, err)
	}
	return nil
}

// largestFile picks the media file from a transfer by size: releases ship
// samples, subtitles, and nfo files alongside the actual movie.
func largestFile(files []transmission.TransferFile) (transmission.TransferFile, bool) {
	var (
		best  transmission.TransferFile
		found bool
	)
	for _, file := range files {
		if !found || file.Size > best.Size {
			best = file
			found = true
		}
	}
	return best, found
}

type ffprobeInspector struct {
	binary string
}

func (f *ffprobeInspector) VideoCodec(ctx context.Context, path string) (string, error) {
	result, err := ffprobe.Inspect(ctx, f.binary, path)
	if err != nil {
		return "", err
	}
	return result.VideoCodec(), nil
}
