package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zachyzissou/stanton-times/internal/logger"
)

// withShutdown cancels the returned context on SIGINT or SIGTERM.
func withShutdown(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
