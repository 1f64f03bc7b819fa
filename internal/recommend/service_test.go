package recommend_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reelmatch/internal/recommend"
	"reelmatch/internal/services"
	"reelmatch/internal/similarity"
	"reelmatch/internal/testsupport"
)

type stubPosters struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *stubPosters) ResolvePoster(_ context.Context, title string) string {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.calls = append(s.calls, title)
	s.mu.Unlock()
	return "https://img/" + title
}

func buildIndex(t *testing.T) *similarity.Index {
	t.Helper()
	return testsupport.NewIndex(t,
		[]string{"Avatar", "Batman", "Casablanca", "Dune", "Elf", "Fargo"},
		[][]float64{
			{1.0, 0.9, 0.2, 0.8, 0.5, 0.1},
			{0.9, 1.0, 0.3, 0.7, 0.4, 0.2},
			{0.2, 0.3, 1.0, 0.1, 0.6, 0.5},
			{0.8, 0.7, 0.1, 1.0, 0.3, 0.2},
			{0.5, 0.4, 0.6, 0.3, 1.0, 0.9},
			{0.1, 0.2, 0.5, 0.2, 0.9, 1.0},
		})
}

func itemTitles(items []recommend.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestRecommendResolvesAndAttachesPosters(t *testing.T) {
	posters := &stubPosters{}
	svc := recommend.NewService(buildIndex(t), posters)

	res, err := svc.Recommend(context.Background(), "  avatar ", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Title != "Avatar" || res.Query != "avatar" {
		t.Fatalf("unexpected result header: %+v", res)
	}
	want := []string{"Batman", "Dune", "Elf", "Casablanca", "Fargo"}
	if !slices.Equal(itemTitles(res.Items), want) {
		t.Fatalf("titles = %v, want %v", itemTitles(res.Items), want)
	}
	for _, item := range res.Items {
		if item.PosterURL != "https://img/"+item.Title {
			t.Fatalf("poster for %q = %q", item.Title, item.PosterURL)
		}
	}
	if !slices.Equal(posters.calls, want) {
		t.Fatalf("sequential poster order = %v, want %v", posters.calls, want)
	}
}

func TestRecommendEmptyInput(t *testing.T) {
	posters := &stubPosters{}
	svc := recommend.NewService(buildIndex(t), posters)
	for _, q := range []string{"", "   "} {
		if _, err := svc.Recommend(context.Background(), q, 5); !errors.Is(err, services.ErrEmptyInput) {
			t.Fatalf("query %q: err = %v, want ErrEmptyInput", q, err)
		}
	}
	if len(posters.calls) != 0 {
		t.Fatal("posters must not be fetched for empty input")
	}
}

func TestRecommendNotFound(t *testing.T) {
	svc := recommend.NewService(buildIndex(t), nil)
	if _, err := svc.Recommend(context.Background(), "zzz", 5); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecommendRejectsNegativeK(t *testing.T) {
	svc := recommend.NewService(buildIndex(t), nil)
	if _, err := svc.Recommend(context.Background(), "Avatar", -2); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRecommendDefaultK(t *testing.T) {
	svc := recommend.NewService(buildIndex(t), nil, recommend.WithDefaultK(2))
	res, err := svc.Recommend(context.Background(), "Avatar", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(res.Items))
	}
	for _, item := range res.Items {
		if item.PosterURL != "" {
			t.Fatalf("poster set without a resolver: %+v", item)
		}
	}
}

func TestExecuteSkipPosters(t *testing.T) {
	posters := &stubPosters{}
	svc := recommend.NewService(buildIndex(t), posters)
	res, err := svc.Execute(context.Background(), recommend.Request{Query: "Elf", K: 3, SkipPosters: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 3 || len(posters.calls) != 0 {
		t.Fatalf("items = %d, poster calls = %d", len(res.Items), len(posters.calls))
	}
}

func TestRecommendConcurrentPosters(t *testing.T) {
	posters := &stubPosters{delay: 20 * time.Millisecond}
	svc := recommend.NewService(buildIndex(t), posters, recommend.WithConcurrency(2))
	res, err := svc.Recommend(context.Background(), "Avatar", 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range res.Items {
		if item.PosterURL != "https://img/"+item.Title {
			t.Fatalf("poster for %q = %q", item.Title, item.PosterURL)
		}
	}
	if peak := posters.peak.Load(); peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
	if want := []string{"Batman", "Dune", "Elf", "Casablanca", "Fargo"}; !slices.Equal(itemTitles(res.Items), want) {
		t.Fatalf("order changed under concurrency: %v", itemTitles(res.Items))
	}
}

func TestRecommendCancelledContext(t *testing.T) {
	svc := recommend.NewService(buildIndex(t), &stubPosters{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Recommend(ctx, "Avatar", 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPoster(t *testing.T) {
	svc := recommend.NewService(buildIndex(t), &stubPosters{})
	title, url, err := svc.Poster(context.Background(), "fargo")
	if err != nil {
		t.Fatal(err)
	}
	if title != "Fargo" || url != "https://img/Fargo" {
		t.Fatalf("Poster = %q, %q", title, url)
	}
	title, _, err = svc.Poster(context.Background(), "Not In Catalog")
	if err != nil || title != "Not In Catalog" {
		t.Fatalf("Poster for unknown = %q, %v", title, err)
	}
	if _, _, err := svc.Poster(context.Background(), " "); !errors.Is(err, services.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}
