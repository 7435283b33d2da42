package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/gss/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the golden_section_search tool to MCP clients.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			solver, err := a.solver(ctx, nil)
			if err != nil {
				return err
			}
			srv := mcp.NewServer(solver, mcp.WithLogger(a.logger))

			switch transport {
			case "stdio":
				// Keep stdout clean for JSON-RPC.
				log.SetOutput(os.Stderr)
				a.logger.Info("starting GSS MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				err := srv.ServeSSE(ctx, port)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().IntVar(&port, "port", 8081, "Port to listen on (only for SSE)")
	return cmd
}
