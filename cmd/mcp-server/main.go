// Command mcp-server serves gosolve tools to agent frameworks, either as
// line-delimited JSON over stdin/stdout (one ToolRequest per line, one ToolResponse per line)
// or over HTTP.
//
// Usage:
//
//	mcp-server                 # stdio
//	mcp-server --http :8080    # HTTP, see internal/server for routes
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/server"
)

const maxLineBytes = 1 << 20

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var configPath, httpAddr string
	cmd := &cobra.Command{
		Use:           "mcp-server",
		Short:         "Serve gosolve tools over stdio or HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())
			solver := gosolve.NewAlgebraSolver(cfg.SolverOptions(logger)...)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if httpAddr != "" {
				cfg.Server.Addr = httpAddr
				return server.New(cfg, solver, logger).Run(ctx)
			}
			logger.Info("gosolve MCP server reading stdin")
			return serveStdio(ctx, solver, logger, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve HTTP on this address instead of stdio")
	return cmd
}

// serveStdio answers one request per input line until EOF or ctx ends.
// Malformed lines get an error response; they do not stop the loop.
func serveStdio(ctx context.Context, solver *gosolve.AlgebraSolver, logger *slog.Logger, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	enc := json.NewEncoder(out)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var req gosolve.ToolRequest
		var resp gosolve.ToolResponse
		if err := json.Unmarshal(line, &req); err != nil {
			resp = gosolve.ToolResponse{Error: "invalid JSON: " + err.Error()}
		} else {
			resp = solver.HandleToolCall(ctx, req)
		}
		if resp.Error != "" {
			logger.Warn("tool call failed", slog.String("tool", req.Tool), slog.String("error", resp.Error))
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return sc.Err()
}
