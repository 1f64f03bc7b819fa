package similarity_test

import (
	"errors"
	"slices"
	"testing"

	"reelmatch/internal/catalog"
	"reelmatch/internal/services"
	"reelmatch/internal/similarity"
	"reelmatch/internal/testsupport"
)

func newIndex(t *testing.T, titles []string, rows [][]float64, opts ...similarity.Option) *similarity.Index {
	t.Helper()
	return testsupport.NewIndex(t, titles, rows, opts...)
}

func sixTitleIndex(t *testing.T, opts ...similarity.Option) *similarity.Index {
	t.Helper()
	return newIndex(t,
		[]string{"A", "B", "C", "D", "E", "F"},
		[][]float64{
			{1.0, 0.9, 0.2, 0.8, 0.5, 0.1},
			{0.9, 1.0, 0.3, 0.7, 0.4, 0.2},
			{0.2, 0.3, 1.0, 0.1, 0.6, 0.5},
			{0.8, 0.7, 0.1, 1.0, 0.3, 0.2},
			{0.5, 0.4, 0.6, 0.3, 1.0, 0.9},
			{0.1, 0.2, 0.5, 0.2, 0.9, 1.0},
		},
		opts...,
	)
}

func titlesOf(items []similarity.Scored) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestRecommendOrdersByDescendingScore(t *testing.T) {
	idx := sixTitleIndex(t)
	got, err := idx.Recommend("A", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []string{"B", "D", "E", "C", "F"}
	if !slices.Equal(titlesOf(got), want) {
		t.Fatalf("titles = %v, want %v", titlesOf(got), want)
	}
	wantScores := []float64{0.9, 0.8, 0.5, 0.2, 0.1}
	for i, item := range got {
		if item.Score != wantScores[i] {
			t.Fatalf("score[%d] = %v, want exactly %v", i, item.Score, wantScores[i])
		}
	}
	if got[0].RowIndex != 1 {
		t.Fatalf("top row index = %d, want 1", got[0].RowIndex)
	}
}

func TestRecommendOrdersNearTiedScoresByMatrixValue(t *testing.T) {
	idx := newIndex(t, []string{"A", "B", "C"}, [][]float64{
		{1, 0.30000001, 0.30000002},
		{0.30000001, 1, 0.5},
		{0.30000002, 0.5, 1},
	})
	got, err := idx.Recommend("A", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(titlesOf(got), []string{"C", "B"}) {
		t.Fatalf("titles = %v, want [C B]", titlesOf(got))
	}
	if got[0].Score != 0.30000002 || got[1].Score != 0.30000001 {
		t.Fatalf("scores = %v, %v; want the matrix values unchanged", got[0].Score, got[1].Score)
	}
}

func TestRecommendTruncatesToK(t *testing.T) {
	idx := sixTitleIndex(t)
	got, err := idx.Recommend("A", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(titlesOf(got), []string{"B", "D"}) {
		t.Fatalf("titles = %v", titlesOf(got))
	}
}

func TestRecommendReturnsAllWhenCatalogSmallerThanK(t *testing.T) {
	idx := newIndex(t, []string{"X", "Y", "Z"}, [][]float64{
		{1, 0.4, 0.6},
		{0.4, 1, 0.2},
		{0.6, 0.2, 1},
	})
	got, err := idx.Recommend("X", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(titlesOf(got), []string{"Z", "Y"}) {
		t.Fatalf("titles = %v", titlesOf(got))
	}
}

func TestRecommendExcludesSelfWhenDiagonalIsNotMaximal(t *testing.T) {
	idx := newIndex(t, []string{"X", "Y", "Z"}, [][]float64{
		{0.1, 0.9, 0.5},
		{0.9, 1, 0.2},
		{0.5, 0.2, 1},
	})
	got, err := idx.Recommend("X", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(titlesOf(got), []string{"Y", "Z"}) {
		t.Fatalf("titles = %v, want [Y Z]", titlesOf(got))
	}
}

func TestRecommendKeepsCatalogOrderForTies(t *testing.T) {
	idx := newIndex(t, []string{"Q", "R", "S", "T"}, [][]float64{
		{1, 0.5, 0.7, 0.5},
		{0.5, 1, 0, 0},
		{0.7, 0, 1, 0},
		{0.5, 0, 0, 1},
	})
	got, err := idx.Recommend("Q", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(titlesOf(got), []string{"S", "R", "T"}) {
		t.Fatalf("titles = %v, want [S R T]", titlesOf(got))
	}
}

func TestRecommendRejectsUnknownTitle(t *testing.T) {
	idx := sixTitleIndex(t)
	_, err := idx.Recommend("a", 5)
	if !errors.Is(err, services.ErrUnknownTitle) {
		t.Fatalf("err = %v, want ErrUnknownTitle", err)
	}
}

func TestRecommendRejectsNonPositiveK(t *testing.T) {
	idx := sixTitleIndex(t)
	for _, k := range []int{0, -1} {
		if _, err := idx.Recommend("A", k); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("k=%d: err = %v, want ErrValidation", k, err)
		}
	}
}

func TestResolveTitle(t *testing.T) {
	titles := []string{"The Dark Knight", "Batman Begins", "Batman", "Avatar"}
	rows := make([][]float64, len(titles))
	for i := range rows {
		rows[i] = make([]float64, len(titles))
		rows[i][i] = 1
	}

	tests := []struct {
		name   string
		policy similarity.MatchPolicy
		query  string
		want   string
	}{
		{name: "substring", policy: similarity.MatchExactFirst, query: "bat", want: "Batman Begins"},
		{name: "case insensitive", policy: similarity.MatchExactFirst, query: "AVATAR", want: "Avatar"},
		{name: "exact wins", policy: similarity.MatchExactFirst, query: "batman", want: "Batman"},
		{name: "first wins", policy: similarity.MatchFirst, query: "batman", want: "Batman Begins"},
		{name: "trimmed", policy: similarity.MatchFirst, query: "  knight ", want: "The Dark Knight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newIndex(t, titles, rows, similarity.WithMatchPolicy(tt.policy))
			got, err := idx.ResolveTitle(tt.query)
			if err != nil {
				t.Fatalf("ResolveTitle(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Fatalf("ResolveTitle(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveTitleFirstSubstringInCatalogOrder(t *testing.T) {
	idx := newIndex(t, []string{"Batman", "The Bat", "Batman Begins"}, [][]float64{
		{1, 0.2, 0.9},
		{0.2, 1, 0.1},
		{0.9, 0.1, 1},
	})
	got, err := idx.ResolveTitle("bat")
	if err != nil {
		t.Fatalf("ResolveTitle: %v", err)
	}
	if got != "Batman" {
		t.Fatalf("ResolveTitle(bat) = %q, want Batman", got)
	}
}

func TestResolveTitleNotFound(t *testing.T) {
	idx := sixTitleIndex(t)
	for _, query := range []string{"", "   ", "zzz"} {
		if _, err := idx.ResolveTitle(query); !errors.Is(err, services.ErrNotFound) {
			t.Fatalf("ResolveTitle(%q) err = %v, want ErrNotFound", query, err)
		}
	}
}

func TestSearchLimit(t *testing.T) {
	idx := newIndex(t, []string{"Alien", "Aliens", "Alien 3", "Heat"}, [][]float64{
		{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1},
	})
	if got := idx.Search("alien", 2); !slices.Equal(got, []string{"Alien", "Aliens"}) {
		t.Fatalf("Search limit 2 = %v", got)
	}
	if got := idx.Search("alien", 0); len(got) != 3 {
		t.Fatalf("Search unlimited = %v", got)
	}
	if got := idx.Search("", 0); len(got) != 0 {
		t.Fatalf("Search blank = %v", got)
	}
}

func TestNewRejectsMisalignedMatrix(t *testing.T) {
	cat, err := catalog.FromTitles("A", "B")
	if err != nil {
		t.Fatal(err)
	}
	m, err := catalog.NewMatrix([][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := similarity.New(cat, m); !errors.Is(err, services.ErrStaleIndex) {
		t.Fatalf("err = %v, want ErrStaleIndex", err)
	}
}

func TestParseMatchPolicy(t *testing.T) {
	if p, err := similarity.ParseMatchPolicy("FIRST"); err != nil || p != similarity.MatchFirst {
		t.Fatalf("ParseMatchPolicy(FIRST) = %v, %v", p, err)
	}
	if p, err := similarity.ParseMatchPolicy(""); err != nil || p != similarity.MatchExactFirst {
		t.Fatalf("ParseMatchPolicy(\"\") = %v, %v", p, err)
	}
	if _, err := similarity.ParseMatchPolicy("fuzzy"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
