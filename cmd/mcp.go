package cmd

import (
	"github.com/huangsam/solaredge/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the SolarEdge MCP server",
	Long:    `Launch an MCP server on stdio that exposes every monitoring endpoint as a tool for AI agents.`,
	PreRunE: connectApp,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(cmd.Context(), a.cfg, a.client, version)
	},
}
