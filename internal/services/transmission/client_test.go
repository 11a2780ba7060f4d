package transmission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newRPCServer(t *testing.T, handler func(method string, arguments map[string]any) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(sessionHeader) == "" {
			w.Header().Set(sessionHeader, "session-abc")
			w.WriteHeader(http.StatusConflict)
			return
		}

		var request struct {
			Method    string         `json:"method"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("decode rpc request: %v", err)
		}
		payload := map[string]any{
			"result":    "success",
			"arguments": handler(request.Method, request.Arguments),
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode rpc response: %v", err)
		}
	}))
}

func TestAddEstablishesSessionAndRetries(t *testing.T) {
	server := newRPCServer(t, func(method string, arguments map[string]any) any {
		if method != "torrent-add" {
			t.Fatalf("unexpected method %q", method)
		}
		return map[string]any{"torrent-added": map[string]any{"id": 7}}
	})
	defer server.Close()

	client, err := New(server.URL, "", "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := client.Add(context.Background(), "http://indexer.test/download/1")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}
}

func TestAddAcceptsDuplicateTransfer(t *testing.T) {
	server := newRPCServer(t, func(method string, arguments map[string]any) any {
		return map[string]any{"torrent-duplicate": map[string]any{"id": 9}}
	})
	defer server.Close()

	client, err := New(server.URL, "", "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := client.Add(context.Background(), "http://indexer.test/download/1")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected existing id 9, got %d", id)
	}
}

func TestProgressScalesPercentDone(t *testing.T) {
	server := newRPCServer(t, func(method string, arguments map[string]any) any {
		if method != "torrent-get" {
			t.Fatalf("unexpected method %q", method)
		}
		return map[string]any{"torrents": []map[string]any{{"percentDone": 0.42}}}
	})
	defer server.Close()

	client, err := New(server.URL, "", "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	progress, err := client.Progress(context.Background(), 7)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress != 42 {
		t.Fatalf("expected 42, got %f", progress)
	}
}

func TestFilesListsTransferContents(t *testing.T) {
	server := newRPCServer(t, func(method string, arguments map[string]any) any {
		return map[string]any{"torrents": []map[string]any{{
			"files": []map[string]any{
				{"name": "Movie.2020/movie.mkv", "length": 4096},
				{"name": "Movie.2020/sample.mkv", "length": 64},
			},
		}}}
	})
	defer server.Close()

	client, err := New(server.URL, "", "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	files, err := client.Files(context.Background(), 7)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 2 || files[0].Name != "Movie.2020/movie.mkv" || files[0].Size != 4096 {
		t.Fatalf("unexpected files: %#v", files)
	}
}

func TestFetchFileDownloadsFromMirror(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Movie.2020/the%20movie.mkv" && r.URL.EscapedPath() != "/Movie.2020/the%20movie.mkv" {
			t.Fatalf("unexpected path %q", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte("media payload"))
	}))
	defer mirror.Close()

	client, err := New("http://transmission.test/rpc", "", "", mirror.URL, time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	destDir := t.TempDir()
	localPath, err := client.FetchFile(context.Background(), 7, "Movie.2020/the movie.mkv", destDir)
	if err != nil {
		t.Fatalf("FetchFile failed: %v", err)
	}
	if localPath != filepath.Join(destDir, "the movie.mkv") {
		t.Fatalf("unexpected local path %q", localPath)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("read fetched file: %v", err)
	}
	if string(data) != "media payload" {
		t.Fatalf("unexpected contents %q", data)
	}
}
