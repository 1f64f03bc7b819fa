// Package tmdb wraps the subset of The Movie Database REST API used to
// resolve posters: movie search and the per-movie image listing.
//
// Requests authenticate with a v4 read access token (Authorization: Bearer)
// when one is configured, otherwise with a v3 api_key query parameter. An
// optional token-bucket limiter paces outbound calls and an optional circuit
// breaker fails fast while TMDB is unhealthy.
package tmdb
