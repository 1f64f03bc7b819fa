// Package testsupport provides shared fixtures for reelmatch tests: temp
// configurations with precomputed artifacts on disk, small similarity
// indexes, and poster stores that clean up after themselves.
package testsupport
