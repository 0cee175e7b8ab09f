package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"refalign/internal/api"
	"refalign/internal/progress"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve progress over HTTP, optionally with an MCP stdio transport",
	Long: `Serve read-only alignment progress on the configured bind address.
With --mcp, also expose progress and match artifacts to MCP clients over
stdio. Both surfaces recompute state from the filesystem per request, so
the server can run alongside batch runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServe(withMCP)
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func runServe(withMCP bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := progress.NewTracker(cfg.Paths.SegmentsRoot, cfg.Paths.OutputRoot)
	handler := api.NewStatusHandler(tracker, slog.Default())

	srv := &http.Server{
		Addr:    cfg.Server.Bind,
		Handler: handler.Router(),
	}

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Tracker:    tracker,
			OutputRoot: cfg.Paths.OutputRoot,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "refalign listening on %s\n", cfg.Server.Bind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
