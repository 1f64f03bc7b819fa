// Package recommend is the entry point shared by the CLI, the HTTP API and
// the MCP server: free-text query in, ranked titles with posters out.
package recommend
