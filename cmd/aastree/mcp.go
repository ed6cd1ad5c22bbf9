package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/aretw0/aastree/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [FILE...]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Opens the given package files and exposes the editing session as MCP tools,
so that AI agents can browse and edit AAS packages.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = env.Config.HTTP.Addr
		}

		sess := env.NewSession()
		for _, path := range args {
			if _, err := sess.Open(path); err != nil {
				return err
			}
		}
		srv := mcp.NewServer(sess, mcp.WithLogger(env.Logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			env.Logger.Info("Starting aastree MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			env.Logger.Info("Starting aastree MCP Server (SSE)", "addr", addr)
			if err := srv.ServeSSE(sigCtx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			env.Logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}),
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Address to listen on, only for SSE (default from config)")
}
