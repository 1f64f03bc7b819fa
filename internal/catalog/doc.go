// Package catalog loads the precomputed recommendation artifacts: the ordered
// movie catalog and the square similarity matrix aligned with it.
//
// Catalog row i and matrix row i describe the same movie. That alignment is
// produced when the artifacts are exported and is checked here on load
// (CheckAlignment) rather than assumed; a mismatch is reported as
// services.ErrStaleIndex and should abort startup.
//
// Supported formats are CSV or JSON for the catalog and JSON, raw
// little-endian float64 (.f64), or float32 (.f32/.bin, widened on load) for
// the matrix.
package catalog
