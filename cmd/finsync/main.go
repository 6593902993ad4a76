package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/finsync/internal/client/app"
	"github.com/iudanet/finsync/internal/client/cli"
	"github.com/iudanet/finsync/internal/client/iocli"
	"github.com/iudanet/finsync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdio := iocli.NewStdio()
	build := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cli.Cli, func() error, error) {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return cli.New(stdio, a.Auth, a.Sync, a.Data), a.Close, nil
	}

	version := fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
	if err := cli.NewRootCommand(stdio, build, version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
