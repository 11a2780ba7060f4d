package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"irilis/internal/config"
	"irilis/internal/logging"
	"irilis/internal/matcher"
	"irilis/internal/queue"
	"irilis/internal/services/overseerr"
	"irilis/internal/services/transmission"
	"irilis/internal/services/xthor"
)

// RequestTracker lists approved requests and resolves their title details.
type RequestTracker interface {
	PendingMovieRequests(ctx context.Context) ([]overseerr.Request, error)
	MovieDetails(ctx context.Context, tmdbID int64) (overseerr.Movie, error)
}

// Indexer searches download candidates for a title.
type Indexer interface {
	Search(ctx context.Context, tmdbID int64, title string) ([]xthor.Torrent, error)
}

// DownloadClient submits a chosen link and returns the transfer identifier.
type DownloadClient interface {
	Add(ctx context.Context, link string) (int64, error)
}

// Watcher turns approved, released requests into tracked downloads. One
// Pass handles every pending request; per-request failures are isolated so
// a bad title never blocks the rest of the pass.
type Watcher struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	tracker   RequestTracker
	indexer   Indexer
	downloads DownloadClient
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewWatcher constructs a watcher with real service clients from config.
func NewWatcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Watcher, error) {
	tracker, err := overseerr.New(cfg.Overseerr.URL, cfg.Overseerr.APIKey,
		time.Duration(cfg.Overseerr.RequestTimeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("overseerr client: %w", err)
	}
	indexer, err := xthor.New(cfg.Xthor.URL, cfg.Xthor.Passkey)
	if err != nil {
		return nil, fmt.Errorf("xthor client: %w", err)
	}
	downloads, err := transmission.New(cfg.Transmission.URL, cfg.Transmission.Username,
		cfg.Transmission.Password, cfg.Downloads.BaseURL,
		time.Duration(cfg.Transmission.RequestTimeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("transmission client: %w", err)
	}
	return NewWatcherWithDependencies(cfg, store, logger, tracker, indexer, downloads), nil
}

// NewWatcherWithDependencies allows injecting collaborators (used in tests).
func NewWatcherWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	tracker RequestTracker,
	indexer Indexer,
	downloads DownloadClient,
) *Watcher {
	delay := time.Duration(cfg.Workflow.IndexerDelay * float64(time.Second))
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Watcher{
		cfg:       cfg,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "watcher"),
		tracker:   tracker,
		indexer:   indexer,
		downloads: downloads,
		limiter:   limiter,
		now:       time.Now,
	}
}

// Pass runs one watcher iteration over all pending requests.
func (w *Watcher) Pass(ctx context.Context) error {
	logger := logging.WithContext(ctx, w.logger)

	requests, err := w.tracker.PendingMovieRequests(ctx)
	if err != nil {
		return err
	}

	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.processRequest(ctx, request)
	}

	logger.Debug("watcher pass finished", logging.Int("requests", len(requests)))
	return nil
}

func (w *Watcher) processRequest(ctx context.Context, request overseerr.Request) {
	tmdbID := request.TMDBID()
	logger := logging.WithContext(ctx, w.logger).With(logging.Int64(logging.FieldExternalID, tmdbID))

	movie, err := w.tracker.MovieDetails(ctx, tmdbID)
	if err != nil {
		logger.Warn("failed to resolve title details", logging.Error(err))
		return
	}
	title := movie.DisplayTitle()
	logger = logger.With(logging.String("title", title))

	released, ok := movie.ReleaseTime()
	window := w.now().AddDate(0, 0, w.cfg.Workflow.ReleaseWindowDays)
	if !ok || released.After(window) {
		logger.Debug("title not released yet, skipping")
		return
	}

	existing, err := w.store.FindByExternalID(ctx, tmdbID)
	if err != nil {
		logger.Warn("job store lookup failed", logging.Error(err))
		return
	}
	if existing != nil {
		logger.Debug("job record already exists, skipping")
		return
	}

	// Courtesy delay before hitting the indexer.
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	torrents, err := w.indexer.Search(ctx, tmdbID, title)
	if err != nil {
		logger.Warn("indexer search failed", logging.Error(err))
		return
	}

	link, ok := matcher.Select(title, toCandidates(torrents), matcher.Options{
		SimilarityThreshold: w.cfg.Xthor.SimilarityThreshold,
		MultiMarker:         w.cfg.Xthor.MultiMarker,
	})
	if !ok {
		logger.Warn("no usable candidate found", logging.Int("candidates", len(torrents)))
		return
	}

	jobID, err := w.downloads.Add(ctx, link)
	if err != nil {
		logger.Warn("failed to submit download", logging.Error(err))
		return
	}

	item := &queue.Item{
		JobID:      jobID,
		ExternalID: tmdbID,
		Title:      title,
		Year:       released.Year(),
		Status:     queue.StatusDownloading,
	}
	if err := w.store.Insert(ctx, item); err != nil {
		// Duplicate means another pass won the race; the transfer is
		// already tracked.
		logger.Warn("failed to record job", logging.Error(err))
		return
	}

	logger.Info("download submitted",
		logging.Int64(logging.FieldJobID, jobID),
		logging.Int("year", item.Year),
	)
}

func toCandidates(torrents []xthor.Torrent) []matcher.Candidate {
	candidates := make([]matcher.Candidate, 0, len(torrents))
	for _, torrent := range torrents {
		candidates = append(candidates, matcher.Candidate{
			Name:           torrent.Name,
			DownloadLink:   torrent.DownloadLink,
			TimesCompleted: int64(torrent.TimesCompleted),
		})
	}
	return candidates
}
