package poster_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelmatch/internal/logging"
	"reelmatch/internal/poster"
	"reelmatch/internal/testsupport"
)

func TestNewFromConfigResolvesThroughTMDB(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			http.NotFound(w, r)
			return
		}
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_results":1,"results":[{"id":949,"title":"Heat","poster_path":"/heat.jpg"}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithTMDBToken("tok", srv.URL), testsupport.WithPersistentPosters())
	cfg.TMDB.ImageBaseURL = "https://img.test/w500"
	store := testsupport.MustOpenStore(t, cfg)

	r, err := poster.NewFromConfig(cfg, logging.NewNop(), store)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	got := r.ResolvePoster(context.Background(), "Heat")
	if got != "https://img.test/w500/heat.jpg" {
		t.Fatalf("ResolvePoster = %q", got)
	}
	if header := <-auth; header != "Bearer tok" {
		t.Fatalf("Authorization = %q", header)
	}
	stored, ok, err := store.Get(context.Background(), "Heat")
	if err != nil || !ok || stored != got {
		t.Fatalf("store.Get = %q, %v, %v", stored, ok, err)
	}
}

func TestNewFromConfigWithoutCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r, err := poster.NewFromConfig(cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if got := r.ResolvePoster(context.Background(), "Heat"); got != cfg.Poster.PlaceholderURL {
		t.Fatalf("ResolvePoster = %q, want placeholder", got)
	}
}
