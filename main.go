package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/omnipathdb/metabopkn/cmd"
	"github.com/omnipathdb/metabopkn/internal/observability"
)

func main() {
	// Builds can run for a long time; SIGINT/SIGTERM cancel the context so
	// downloads and database writes stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
