// Package lifecycle flushes pending state when the process is asked to stop.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// FlushTimeout bounds the flush run on shutdown.
const FlushTimeout = 10 * time.Second

// OnShutdown blocks until SIGINT or SIGTERM arrives or ctx is done, then
// runs flush and calls exit with 0, or 1 when flush failed. exit is always
// called exactly once.
func OnShutdown(ctx context.Context, flush func(context.Context) error, exit func(code int), log logrus.FieldLogger) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	Shutdown(flush, exit, log)
}

// Shutdown runs flush with FlushTimeout and then calls exit.
func Shutdown(flush func(context.Context) error, exit func(code int), log logrus.FieldLogger) {
	code := 0
	defer func() { exit(code) }()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("flush panicked during shutdown")
			code = 1
		}
	}()

	log.Info("shutting down, flushing pending updates")
	ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
	defer cancel()

	if err := flush(ctx); err != nil {
		log.WithError(err).Error("failed to flush pending updates")
		code = 1
	}
}
