// Package config loads, normalizes, and validates reelmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_TOKEN, TMDB_API_KEY, REELMATCH_CATALOG, and REELMATCH_SIMILARITY. The
// Config type centralizes every knob the CLI, HTTP API, and MCP server need so
// artifact paths and external service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
