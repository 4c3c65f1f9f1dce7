package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP Server.
This allows AI agents to evaluate paths and invoke units as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs go to Stderr so they cannot corrupt JSON-RPC on Stdout.
		logger := logging.New(slog.LevelDebug)
		slog.SetDefault(logger)

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}

		stack, err := cli.BuildStack(cfg, logger, false)
		if err != nil {
			log.Fatalf("Error initializing engine: %v", err)
		}
		defer stack.Close()

		srv, err := mcp.NewServer(cmd.Context(), stack.Engine, stack.Units, mcp.WithLogger(logger))
		if err != nil {
			log.Fatalf("Error building MCP server: %v", err)
		}

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("Starting Sluice MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Sluice MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				// Ignore server closed error if it was caused by context cancellation
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
