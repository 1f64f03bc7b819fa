package main

import (
	"github.com/spf13/cobra"

	"reelmatch/internal/mcpserver"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run reelmatch as an MCP (Model Context Protocol) server over stdio",
		Long: `Start an MCP server that exposes reelmatch over stdin/stdout.

Tools:

  recommend_movies  - Movies similar to a title
  search_titles     - Catalog titles containing a query

Example client configuration:

  {
    "mcpServers": {
      "reelmatch": { "command": "reelmatch", "args": ["mcp"] }
    }
  }
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			svc, err := ctx.buildService()
			if err != nil {
				return err
			}
			server, err := mcpserver.New(svc, version, logger)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}
