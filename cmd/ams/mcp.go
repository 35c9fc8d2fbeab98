package main

import (
	"github.com/spf13/cobra"

	"github.com/ams-studio/ams/pkg/mcp"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the ams screens as MCP tools over stdio",
		RunE: run(flags, false, func(cmd *cobra.Command, a *app, _ []string) error {
			srv := mcp.New(a.client, a.store, a.cfg, version, a.log)
			return srv.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
}
