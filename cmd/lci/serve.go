package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/server"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the search_* tool server over JSON-RPC on stdio",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "watch", Usage: "Watch the tree and keep indexes current"},
		&cli.BoolFlag{Name: "definitions", Usage: "Build the AST definition index on startup"},
		&cli.BoolFlag{Name: "memory-log", Usage: "Set server.memory-log in the config (the server does not log memory usage)"},
		&cli.BoolFlag{Name: "metrics", Usage: "Set server.metrics in the config (search_info does not report metrics)"},
	},
	Action: func(c *cli.Context) error {
		root, err := filepath.Abs(c.String("dir"))
		if err != nil {
			return fmt.Errorf("resolve root: %w", err)
		}
		cfg, err := config.LoadKDL(root)
		if err != nil {
			return err
		}

		if c.IsSet("watch") {
			cfg.Watch.Enabled = c.Bool("watch")
		}
		if c.IsSet("definitions") {
			cfg.Server.Definitions = c.Bool("definitions")
		}
		if c.IsSet("memory-log") {
			cfg.Server.MemoryLog = c.Bool("memory-log")
		}
		if c.IsSet("metrics") {
			cfg.Server.Metrics = c.Bool("metrics")
		}

		debug.SetMCPMode(true)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run(ctx) }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}
