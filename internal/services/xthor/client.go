package xthor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"irilis/internal/services"
)

// Torrent is one raw candidate returned by the indexer. Names are
// unstructured release strings; TimesCompleted is the popularity counter the
// matcher uses as a health proxy.
type Torrent struct {
	Name           string `json:"name"`
	DownloadLink   string `json:"download_link"`
	TimesCompleted Count  `json:"times_completed"`
}

// Count tolerates the API returning counters as either numbers or strings.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		*c = 0
		return nil
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fmt.Errorf("parse times_completed: %w", err)
	}
	*c = Count(value)
	return nil
}

// Client provides access to the Xthor indexer API.
type Client struct {
	baseURL    string
	passkey    string
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

// New creates an indexer client.
func New(baseURL, passkey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("xthor base url required")
	}
	passkey = strings.TrimSpace(passkey)
	if passkey == "" {
		return nil, errors.New("xthor passkey required")
	}
	client := &Client{
		baseURL:    baseURL,
		passkey:    passkey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search returns the raw candidates the indexer knows for a TMDB identifier.
// An empty result is not an error; the watcher retries the title next pass.
func (c *Client) Search(ctx context.Context, tmdbID int64, title string) ([]Torrent, error) {
	params := url.Values{}
	params.Set("passkey", c.passkey)
	params.Set("tmdbid", strconv.FormatInt(tmdbID, 10))
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "xthor", "search", title, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "xthor", "search", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "xthor", "search", title, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload struct {
		Torrents []Torrent `json:"torrents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "xthor", "search", "decode response", err)
	}
	return payload.Torrents, nil
}
