package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// deps are injected by the container. Dispatcher and Light are only present
// when -dispatch was given.
type deps struct {
	dig.In

	Flags      *di.CLIFlags
	Logger     *zap.Logger
	Parser     core.MessageParser
	Classifier *core.Classifier
	Dispatcher *core.Dispatcher `optional:"true"`
	Light      core.SignalLight `optional:"true"`
}

func run(d deps) error {
	defer d.Logger.Sync()

	raw, err := readInput(d.Flags.InputFile, d.Logger)
	if err != nil {
		return err
	}

	candidate, err := d.Parser.Parse(0, raw)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}
	event := d.Classifier.Classify(candidate)

	fmt.Printf("\n=== Message ===\n")
	fmt.Printf("From: %s\n", candidate.From)
	fmt.Printf("Subject: %s\n", candidate.Subject)
	fmt.Printf("\n=== Classification ===\n")
	fmt.Printf("Event: %s\n", event)

	if event == core.EventNone {
		fmt.Printf("Action: none\n")
		return nil
	}

	if d.Dispatcher == nil {
		fmt.Printf("Dispatch: skipped (use -dispatch to fire the outputs)\n")
		return nil
	}

	action, _ := d.Dispatcher.Action(event)
	fmt.Printf("Color: %s\n", action.Color)
	fmt.Printf("Voice cue: %s\n", action.VoiceCue)
	fmt.Printf("Text: %s\n", action.Text)

	defer func() {
		if err := d.Light.Close(); err != nil {
			d.Logger.Error("Failed to release signal light", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	if err := d.Dispatcher.Dispatch(ctx, event); err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}
	fmt.Printf("Dispatch: done in %v\n", time.Since(startTime))
	return nil
}

func readInput(path string, logger *zap.Logger) ([]byte, error) {
	if path == "" {
		logger.Info("Reading message from stdin")
		return io.ReadAll(os.Stdin)
	}

	logger.Info("Reading message from file", zap.String("file", path))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return raw, nil
}
