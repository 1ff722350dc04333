package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/marcelocantos/tubes/internal/audit"
	"github.com/marcelocantos/tubes/internal/cli"
	"github.com/marcelocantos/tubes/internal/config"
	"github.com/marcelocantos/tubes/internal/mcp"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		cli.RunHelp(os.Stderr)
		return 1
	}

	// Load config.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubes: config: %v\n", err)
		return 1
	}

	// Set up audit logger.
	logger, err := audit.NewLogger(cfg.Audit.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubes: audit: %v\n", err)
		// Continue without audit logging.
		logger = nil
	}

	// Set up context with cancellation on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "--run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "tubes: --run needs a pipeline name")
			return 2
		}
		return cli.RunScript(ctx, cfg, logger, os.Args[2])
	case "--list":
		return cli.RunList(os.Stdout, cfg)
	case "--serve":
		if err := mcp.New(cfg, logger, version).ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "tubes: serve: %v\n", err)
			return 1
		}
		return 0
	case "--audit":
		return cli.RunAudit(os.Stdout, cfg.Audit.Path, os.Args[2:])
	case "--help":
		return cli.RunHelp(os.Stdout)
	case "--version":
		fmt.Printf("tubes %s\n", version)
		return 0
	default:
		// Everything else is a pipeline given directly as argv tokens.
		return cli.RunArgs(ctx, logger, os.Args[1:])
	}
}
