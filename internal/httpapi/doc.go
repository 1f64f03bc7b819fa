// Package httpapi serves recommendations over HTTP.
//
// Routes:
//
//	GET /api/recommend?title=<q>&k=<n>&posters=<bool>
//	GET /api/poster?title=<t>
//	GET /api/titles?q=<q>&limit=<n>
//	GET /api/health
//	GET /metrics
//
// Errors are JSON objects of the form {"error": "..."} with a status derived
// from services.StatusCode. When a token is configured every /api route
// except health requires "Authorization: Bearer <token>".
package httpapi
