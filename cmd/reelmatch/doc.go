// Command reelmatch recommends movies similar to a given title from a
// precomputed similarity matrix and decorates them with TMDB posters.
//
// Subcommands cover one-shot recommendations, poster lookups, catalog
// inspection, the HTTP API server, an MCP stdio server and poster cache
// maintenance. Run `reelmatch config init` to create a starter config.
package main
