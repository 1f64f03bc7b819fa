package testsupport

import (
	"testing"

	"reelmatch/internal/catalog"
	"reelmatch/internal/similarity"
)

// NewIndex builds a similarity index over titles and rows, failing the test
// on any validation error.
func NewIndex(t testing.TB, titles []string, rows [][]float64, opts ...similarity.Option) *similarity.Index {
	t.Helper()

	cat, err := catalog.FromTitles(titles...)
	if err != nil {
		t.Fatalf("catalog.FromTitles: %v", err)
	}
	m, err := catalog.NewMatrix(rows)
	if err != nil {
		t.Fatalf("catalog.NewMatrix: %v", err)
	}
	idx, err := similarity.New(cat, m, opts...)
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	return idx
}

// LoadIndex builds a similarity index from the artifacts referenced by paths.
func LoadIndex(t testing.TB, catalogPath, matrixPath string, opts ...similarity.Option) *similarity.Index {
	t.Helper()

	cat, m, err := catalog.Load(catalogPath, matrixPath)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	idx, err := similarity.New(cat, m, opts...)
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	return idx
}
