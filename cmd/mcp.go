package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Run: func(_ *cobra.Command, _ []string) {
		serveMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func serveMCP() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	rt := bootstrap(ctx, logger)
	defer rt.close(context.Background())

	srv, err := mcp.NewServer(rt.pipeline, version, logger)
	if err != nil {
		logger.Fatal("creating mcp server", zap.Error(err))
	}

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp server stopped with error", zap.Error(err))
	}
}
