package commands

import (
	"os"
	"os/signal"
	"syscall"

	"ecopack-forecast/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Long:  `Exposes forecast_plan, compare_plans and list_materials as Model Context Protocol tools on stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cfg, nil)
		if err != nil {
			return err
		}
		server, err := mcp.NewServer(svc, Version)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
