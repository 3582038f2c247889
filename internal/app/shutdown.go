package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hn-newest-parser/internal/observability"
)

// GracefulShutdown возвращает context, который отменяется по SIGINT/SIGTERM
// или по истечении runTimeout (0 = без ограничения)
func GracefulShutdown(logger *observability.Logger, runTimeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if runTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), runTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
