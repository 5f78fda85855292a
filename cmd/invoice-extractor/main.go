package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/a3tai/invoice-extractor/internal/cli"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cli.SetBuildInfo(version, buildTime, gitCommit)

	// Cancelled on SIGINT/SIGTERM so watch and serve can shut down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
