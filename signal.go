package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext derives the watch daemon's run context: the first SIGINT
// or SIGTERM cancels it so in-flight refresh and geocode work can drain; a
// repeat signal kills the process without waiting.
func shutdownContext(parent context.Context, logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		draining := false

		for {
			select {
			case sig := <-sigCh:
				if !draining {
					draining = true

					logger.Info("stopping watch, draining in-flight work", "signal", sig.String())
					cancel()

					continue
				}

				logger.Warn("repeat signal, killing watch without draining", "signal", sig.String())
				os.Exit(1)
			case <-parent.Done():
				cancel()

				return
			}
		}
	}()

	return ctx
}
