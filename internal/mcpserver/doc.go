// Package mcpserver exposes recommendations as Model Context Protocol tools
// over stdio, so assistants can ask for similar movies directly.
//
// Tools:
//
//	recommend_movies  title, k -> matched title and ranked recommendations
//	search_titles     query, limit -> catalog titles containing query
package mcpserver
