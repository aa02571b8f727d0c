package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/di"
	"github.com/mikey/kopi-bell/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run one poll pass
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	notifier *core.Notifier,
	light core.SignalLight,
	recorder *metrics.Recorder,
) error {
	defer logger.Sync()

	// The light goes dark however the run ends
	defer func() {
		if err := light.Close(); err != nil {
			logger.Error("Failed to release signal light", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := notifier.Run(ctx)

	if flushErr := recorder.Flush(); flushErr != nil {
		logger.Warn("Failed to write metrics", zap.Error(flushErr))
	}

	if err != nil {
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	fmt.Println(summary)
	return nil
}
