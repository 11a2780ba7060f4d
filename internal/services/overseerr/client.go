package overseerr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"irilis/internal/services"
)

const apiPrefix = "/api/v1"

// Request is a pending media request tracked by Overseerr.
type Request struct {
	ID        int64  `json:"id"`
	MediaType string `json:"type"`
	Media     struct {
		TMDBID int64 `json:"tmdbId"`
	} `json:"media"`
}

// TMDBID returns the requested title's external identifier.
func (r Request) TMDBID() int64 {
	return r.Media.TMDBID
}

// Movie holds the title details used to decide whether a request is
// actionable.
type Movie struct {
	Title         string `json:"title"`
	OriginalTitle string `json:"originalTitle"`
	ReleaseDate   string `json:"releaseDate"`
}

// DisplayTitle prefers the original title, matching how releases are named
// on the indexer.
func (m Movie) DisplayTitle() string {
	if title := strings.TrimSpace(m.OriginalTitle); title != "" {
		return title
	}
	return strings.TrimSpace(m.Title)
}

// ReleaseTime parses the release date. The second return is false when the
// date is absent or unparseable.
func (m Movie) ReleaseTime() (time.Time, bool) {
	raw := strings.TrimSpace(m.ReleaseDate)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Client provides access to the Overseerr request-tracking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Overseerr client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("overseerr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("overseerr api key required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PendingMovieRequests returns unavailable movie requests, oldest first.
func (c *Client) PendingMovieRequests(ctx context.Context) ([]Request, error) {
	endpoint := c.baseURL + apiPrefix + "/request?take=1000&filter=unavailable&sort=added"

	var payload struct {
		Results []Request `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "overseerr", "list requests", "", err)
	}

	requests := make([]Request, 0, len(payload.Results))
	for _, request := range payload.Results {
		if strings.EqualFold(request.MediaType, "movie") {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

// MovieDetails fetches title metadata for a TMDB identifier.
func (c *Client) MovieDetails(ctx context.Context, tmdbID int64) (Movie, error) {
	endpoint := fmt.Sprintf("%s%s/movie/%d", c.baseURL, apiPrefix, tmdbID)

	var movie Movie
	if err := c.getJSON(ctx, endpoint, &movie); err != nil {
		return Movie{}, services.Wrap(services.ErrTransient, "overseerr", "movie details", fmt.Sprintf("tmdb %d", tmdbID), err)
	}
	return movie, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return services.ErrAuth
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
