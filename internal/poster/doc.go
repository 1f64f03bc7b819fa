// Package poster turns a catalog title into a displayable poster URL.
//
// ResolvePoster never fails: every miss, upstream error or missing credential
// yields the configured placeholder image. Failures are logged with a reason
// (no_results, no_image, upstream_error) and counted in metrics so operators
// can tell "TMDB has no poster" from "TMDB is down".
//
// Lookups go through an in-memory LRU and, when configured, a persistent
// posterstore tier before reaching TMDB.
package poster
