package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// FixtureCatalogCSV is a six-title catalog aligned with FixtureMatrixJSON.
const FixtureCatalogCSV = `index,title,movie_id
0,Avatar,19995
1,Batman,268
2,Batman Begins,272
3,Casablanca,289
4,Dune,438631
5,Fargo,275
`

// FixtureMatrixJSON is the similarity matrix for FixtureCatalogCSV.
const FixtureMatrixJSON = `[
  [1.0, 0.9, 0.2, 0.8, 0.5, 0.1],
  [0.9, 1.0, 0.3, 0.7, 0.4, 0.2],
  [0.2, 0.3, 1.0, 0.1, 0.6, 0.5],
  [0.8, 0.7, 0.1, 1.0, 0.3, 0.2],
  [0.5, 0.4, 0.6, 0.3, 1.0, 0.9],
  [0.1, 0.2, 0.5, 0.2, 0.9, 1.0]
]`

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteArtifacts writes the fixture catalog and matrix under dir and returns
// their paths.
func WriteArtifacts(t testing.TB, dir string) (catalogPath, matrixPath string) {
	t.Helper()

	catalogPath = filepath.Join(dir, "movies.csv")
	matrixPath = filepath.Join(dir, "similarity.json")
	WriteFile(t, catalogPath, FixtureCatalogCSV)
	WriteFile(t, matrixPath, FixtureMatrixJSON)
	return catalogPath, matrixPath
}
