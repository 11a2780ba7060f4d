package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"irilis/internal/services"
)

const sessionHeader = "X-Transmission-Session-Id"

// TransferFile describes one file inside a transfer.
type TransferFile struct {
	Name string `json:"name"`
	Size int64  `json:"length"`
}

// Client talks to the Transmission RPC endpoint and the HTTP mirror that
// serves completed downloads.
type Client struct {
	rpcURL          string
	username        string
	password        string
	downloadBaseURL string
	httpClient      *http.Client

	mu        sync.Mutex
	sessionID string
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

// New creates a download client.
func New(rpcURL, username, password, downloadBaseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return nil, errors.New("transmission rpc url required")
	}
	downloadBaseURL = strings.TrimRight(strings.TrimSpace(downloadBaseURL), "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		rpcURL:          rpcURL,
		username:        username,
		password:        password,
		downloadBaseURL: downloadBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Add submits a download link and returns the transfer identifier. A link
// the client already knows is not an error; the existing identifier is
// returned.
func (c *Client) Add(ctx context.Context, link string) (int64, error) {
	var result struct {
		Added *struct {
			ID int64 `json:"id"`
		} `json:"torrent-added"`
		Duplicate *struct {
			ID int64 `json:"id"`
		} `json:"torrent-duplicate"`
	}
	err := c.call(ctx, "torrent-add", map[string]any{"filename": link}, &result)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "transmission", "add transfer", "", err)
	}
	switch {
	case result.Added != nil:
		return result.Added.ID, nil
	case result.Duplicate != nil:
		return result.Duplicate.ID, nil
	default:
		return 0, services.Wrap(services.ErrTransient, "transmission", "add transfer", "no transfer id in response", nil)
	}
}

// Progress returns the transfer's completion percentage (0-100).
func (c *Client) Progress(ctx context.Context, id int64) (float64, error) {
	var result struct {
		Torrents []struct {
			PercentDone float64 `json:"percentDone"`
		} `json:"torrents"`
	}
	err := c.call(ctx, "torrent-get", map[string]any{
		"ids":    []int64{id},
		"fields": []string{"percentDone"},
	}, &result)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "transmission", "get progress", fmt.Sprintf("transfer %d", id), err)
	}
	if len(result.Torrents) == 0 {
		return 0, services.Wrap(services.ErrNotFound, "transmission", "get progress", fmt.Sprintf("transfer %d unknown", id), nil)
	}
	return result.Torrents[0].PercentDone * 100, nil
}

// Files lists the transfer's constituent files.
func (c *Client) Files(ctx context.Context, id int64) ([]TransferFile, error) {
	var result struct {
		Torrents []struct {
			Files []TransferFile `json:"files"`
		} `json:"torrents"`
	}
	err := c.call(ctx, "torrent-get", map[string]any{
		"ids":    []int64{id},
		"fields": []string{"files"},
	}, &result)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transmission", "list files", fmt.Sprintf("transfer %d", id), err)
	}
	if len(result.Torrents) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "transmission", "list files", fmt.Sprintf("transfer %d unknown", id), nil)
	}
	return result.Torrents[0].Files, nil
}

// FetchFile streams a completed file from the download mirror into destDir
// and returns the local path.
func (c *Client) FetchFile(ctx context.Context, id int64, name, destDir string) (string, error) {
	if c.downloadBaseURL == "" {
		return "", services.Wrap(services.ErrConfiguration, "transmission", "fetch file", "download mirror base url not configured", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", "empty file name", nil)
	}

	endpoint := c.downloadBaseURL + "/" + escapePath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", name, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	localPath := filepath.Join(destDir, filepath.Base(name))
	out, err := os.Create(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", name, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(localPath)
		return "", services.Wrap(services.ErrTransient, "transmission", "fetch file", name, err)
	}
	return localPath, nil
}

// call performs one RPC round trip. A 409 response carries a fresh session
// token; the session is re-established silently and the call retried once.
func (c *Client) call(ctx context.Context, method string, arguments map[string]any, result any) error {
	response, err := c.post(ctx, method, arguments)
	if err != nil {
		return err
	}
	if response.StatusCode == http.StatusConflict {
		c.setSessionID(response.Header.Get(sessionHeader))
		_ = response.Body.Close()

		response, err = c.post(ctx, method, arguments)
		if err != nil {
			return err
		}
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusUnauthorized:
		return services.ErrAuth
	case response.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	var envelope struct {
		Result    string          `json:"result"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if envelope.Result != "success" {
		return fmt.Errorf("rpc result %q", envelope.Result)
	}
	if result != nil && len(envelope.Arguments) > 0 {
		if err := json.Unmarshal(envelope.Arguments, result); err != nil {
			return fmt.Errorf("decode rpc arguments: %w", err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, arguments map[string]any) (*http.Response, error) {
	body, err := json.Marshal(map[string]any{
		"method":    method,
		"arguments": arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if session := c.getSessionID(); session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform rpc request: %w", err)
	}
	return resp, nil
}

func (c *Client) getSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

func escapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
