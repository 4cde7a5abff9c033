package commands

import (
	"devops-report/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(orchestrator, Version)
		if err != nil {
			return err
		}
		return server.Serve(cmd.Context())
	},
}
