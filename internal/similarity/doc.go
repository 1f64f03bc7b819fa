// Package similarity answers "which catalog titles are most similar to X"
// from the precomputed catalog and similarity matrix.
//
// ResolveTitle maps free text to a canonical catalog title using Unicode case
// folding. Recommend ranks every other row of the matrix for that title with a
// stable descending sort, so ties keep catalog order. The title's own row is
// excluded by identity, not by assuming it sorts first.
//
// An Index is immutable after construction and safe for concurrent use.
package similarity
