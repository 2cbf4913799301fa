package internal

import (
	"context"
	"log/slog"
	"os"

	"github.com/starford/grille/internal/mcpserver"
)

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
// Logs go to stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}

	logger := newLogger(app.logOutput, app.config.App.LogLevel)

	c, err := newCore(app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("MCP server starting", slog.String("puzzles_path", app.config.Puzzles.Path))
	return mcpserver.New(c.puzzles, c.sessions).ServeStdio()
}
