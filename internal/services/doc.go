// Package services defines shared utilities consumed by the recommendation
// components and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp operation names, canonical titles, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified with errors.Is at the edges (CLI exit paths, HTTP status
//     codes) without string matching.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the CLI, HTTP API, and MCP server.
package services
