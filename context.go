// Package sbx implements the sbx archival container format: encoding an
// arbitrary byte stream into a sequence of fixed-size, self-describing,
// optionally Reed-Solomon protected blocks.
package sbx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context which is canceled when the process
// first receives SIGINT or SIGTERM. The first signal only cancels the
// context; it does not stop the process by itself.
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// A second signal terminates immediately, useful if cleanup hangs.
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
