package overseerr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"irilis/internal/services"
)

func TestPendingMovieRequestsFiltersByType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/request" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if key := r.Header.Get("X-Api-Key"); key != "key-123" {
			t.Fatalf("unexpected api key %q", key)
		}
		if filter := r.URL.Query().Get("filter"); filter != "unavailable" {
			t.Fatalf("unexpected filter %q", filter)
		}
		_, _ = w.Write([]byte(`{"results": [
			{"id": 1, "type": "movie", "media": {"tmdbId": 550}},
			{"id": 2, "type": "tv", "media": {"tmdbId": 1399}},
			{"id": 3, "type": "movie", "media": {"tmdbId": 194}}
		]}`))
	}))
	defer server.Close()

	client, err := New(server.URL, "key-123", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	requests, err := client.PendingMovieRequests(context.Background())
	if err != nil {
		t.Fatalf("PendingMovieRequests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 movie requests, got %d", len(requests))
	}
	if requests[0].TMDBID() != 550 || requests[1].TMDBID() != 194 {
		t.Fatalf("unexpected request ids: %#v", requests)
	}
}

func TestMovieDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/movie/550" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"title": "Fight Club", "originalTitle": "Fight Club", "releaseDate": "1999-10-15"}`))
	}))
	defer server.Close()

	client, err := New(server.URL, "key-123", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	movie, err := client.MovieDetails(context.Background(), 550)
	if err != nil {
		t.Fatalf("MovieDetails failed: %v", err)
	}
	if movie.DisplayTitle() != "Fight Club" {
		t.Fatalf("unexpected title %q", movie.DisplayTitle())
	}
	released, ok := movie.ReleaseTime()
	if !ok || released.Year() != 1999 {
		t.Fatalf("unexpected release time %v ok=%v", released, ok)
	}
}

func TestRejectedCredentialsSurfaceAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := New(server.URL, "bad-key", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.PendingMovieRequests(context.Background())
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestDisplayTitlePrefersOriginal(t *testing.T) {
	movie := Movie{Title: "Amelie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain"}
	if got := movie.DisplayTitle(); got != "Le Fabuleux Destin d'Amélie Poulain" {
		t.Fatalf("unexpected title %q", got)
	}

	movie = Movie{Title: "Fight Club"}
	if got := movie.DisplayTitle(); got != "Fight Club" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestReleaseTimeMissingDate(t *testing.T) {
	if _, ok := (Movie{}).ReleaseTime(); ok {
		t.Fatal("missing release date should not parse")
	}
	if _, ok := (Movie{ReleaseDate: "not-a-date"}).ReleaseTime(); ok {
		t.Fatal("malformed release date should not parse")
	}
}
