package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"reelmatch/internal/config"
	"reelmatch/internal/httpapi"
	"reelmatch/internal/logging"
	"reelmatch/internal/poster"
	"reelmatch/internal/recommend"
	"reelmatch/internal/testsupport"
)

type fixedPosters struct{}

func (fixedPosters) ResolvePoster(_ context.Context, title string) string {
	return "https://img/" + title
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *httpapi.Server {
	t.Helper()
	idx := testsupport.NewIndex(t,
		[]string{"Avatar", "Batman", "Batman Begins", "Casablanca"},
		[][]float64{
			{1, 0.5, 0.4, 0.1},
			{0.5, 1, 0.9, 0.2},
			{0.4, 0.9, 1, 0.3},
			{0.1, 0.2, 0.3, 1},
		})
	svc := recommend.NewService(idx, fixedPosters{})

	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	srv, err := httpapi.New(cfg, svc, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func get(t *testing.T, h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRecommendEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/api/recommend?title=batman&k=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	res := decode[recommend.Result](t, rec)
	if res.Title != "Batman" {
		t.Fatalf("title = %q, want Batman", res.Title)
	}
	if len(res.Items) != 2 || res.Items[0].Title != "Batman Begins" || res.Items[1].Title != "Avatar" {
		t.Fatalf("items = %+v", res.Items)
	}
	if res.Items[0].Score != 0.9 || res.Items[1].Score != 0.5 {
		t.Fatalf("scores = %v, %v; want exactly 0.9, 0.5", res.Items[0].Score, res.Items[1].Score)
	}
	if !strings.Contains(rec.Body.String(), `"score":0.9,`) {
		t.Fatalf("body should carry the unnarrowed score: %s", rec.Body.String())
	}
	if res.Items[0].PosterURL != "https://img/Batman Begins" {
		t.Fatalf("poster = %q", res.Items[0].PosterURL)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestRecommendEndpointWithoutPosters(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/api/recommend?title=Avatar&posters=false")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	res := decode[recommend.Result](t, rec)
	if len(res.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Items))
	}
	for _, item := range res.Items {
		if item.PosterURL != "" {
			t.Fatalf("unexpected poster %q", item.PosterURL)
		}
	}
}

func TestRecommendEndpointErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		target string
		status int
		want   string
	}{
		{target: "/api/recommend?title=", status: http.StatusBadRequest, want: "please enter a movie name"},
		{target: "/api/recommend?title=zzz", status: http.StatusNotFound, want: "movie not found"},
		{target: "/api/recommend?title=Avatar&k=abc", status: http.StatusBadRequest, want: "invalid k"},
		{target: "/api/recommend?title=Avatar&k=-1", status: http.StatusBadRequest, want: "invalid k"},
		{target: "/api/recommend?title=Avatar&posters=maybe", status: http.StatusBadRequest, want: "invalid posters"},
	}
	for _, tt := range tests {
		rec := get(t, srv.Handler(), tt.target)
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
		}
		body := decode[map[string]string](t, rec)
		if !strings.Contains(body["error"], tt.want) {
			t.Fatalf("%s: error = %q, want substring %q", tt.target, body["error"], tt.want)
		}
	}
}

func TestPosterEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/api/poster?title=casablanca")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[httpapi.PosterResponse](t, rec)
	if body.Title != "Casablanca" || body.PosterURL != "https://img/Casablanca" {
		t.Fatalf("body = %+v", body)
	}
}

func TestForgetPosterEndpointDropsCachedPoster(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPersistentPosters())
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedPoster(t, store, "Batman", "https://img/stale-batman")

	resolver, err := poster.NewResolver(nil, poster.WithStore(store), poster.WithPlaceholderURL("https://img/none"))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	idx := testsupport.LoadIndex(t, cfg.Paths.Catalog, cfg.Paths.Similarity)
	srv, err := httpapi.New(cfg, recommend.NewService(idx, resolver), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := srv.Handler()

	if body := decode[httpapi.PosterResponse](t, get(t, h, "/api/poster?title=batman")); body.PosterURL != "https://img/stale-batman" {
		t.Fatalf("before delete poster = %q", body.PosterURL)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/poster?title=batman", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d body=%s", rec.Code, rec.Body.String())
	}
	if body := decode[httpapi.ForgetPosterResponse](t, rec); body.Title != "Batman" || !body.Removed {
		t.Fatalf("delete body = %+v", body)
	}

	if body := decode[httpapi.PosterResponse](t, get(t, h, "/api/poster?title=batman")); body.PosterURL != "https://img/none" {
		t.Fatalf("after delete poster = %q, want placeholder", body.PosterURL)
	}
	if _, ok, _ := store.Get(context.Background(), "Batman"); ok {
		t.Fatal("store still holds Batman")
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (brokenStore) Put(context.Context, string, string) error { return nil }

func (brokenStore) Remove(context.Context, string) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestServerErrorWarningCarriesHintAndImpact(t *testing.T) {
	resolver, err := poster.NewResolver(nil, poster.WithStore(brokenStore{}))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	cfg := testsupport.NewConfig(t)
	idx := testsupport.LoadIndex(t, cfg.Paths.Catalog, cfg.Paths.Similarity)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	srv, err := httpapi.New(cfg, recommend.NewService(idx, resolver), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/poster?title=dune", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var warning map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if record["msg"] == "api request failed" {
			warning = record
		}
	}
	if warning == nil {
		t.Fatalf("no api request failed warning in %s", logs.String())
	}
	if warning["level"] != "WARN" {
		t.Fatalf("level = %v, want WARN", warning["level"])
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if v, ok := warning[key].(string); !ok || v == "" {
			t.Fatalf("warning missing %s: %v", key, warning)
		}
	}
}

func TestTitlesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/api/titles?q=bat&limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[httpapi.TitlesResponse](t, rec)
	if len(body.Titles) != 2 || body.Titles[0] != "Batman" {
		t.Fatalf("titles = %v", body.Titles)
	}
	if rec := get(t, srv.Handler(), "/api/titles"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing q status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/api/health", "X-Request-ID", "abc-123")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[httpapi.HealthResponse](t, rec)
	if body.Status != "ok" || body.Titles != 4 {
		t.Fatalf("body = %+v", body)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id = %q, want propagated value", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	_ = get(t, srv.Handler(), "/api/health")
	rec := get(t, srv.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reelmatch_api_requests_total") {
		t.Fatal("expected api request counter in exposition")
	}
}

func TestTokenRequired(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Server.Token = "secret" })
	if rec := get(t, srv.Handler(), "/api/recommend?title=Avatar"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", rec.Code)
	}
	if rec := get(t, srv.Handler(), "/api/recommend?title=Avatar", "Authorization", "Bearer secret"); rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d", rec.Code)
	}
	if rec := get(t, srv.Handler(), "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("health should stay public, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Server.RateLimitPerMinute = 2 })
	for i := range 2 {
		if rec := get(t, srv.Handler(), "/api/health"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	if rec := get(t, srv.Handler(), "/api/health"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Server.AllowedOrigins = []string{"http://localhost:3000"} })
	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Server.Bind = "127.0.0.1:0" })
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
