package context

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/assetnote/kites3/pkg/log"
)

var (
	ctx            context.Context
	cancel         context.CancelFunc
	ctxInitialized sync.Once
)

// AddInterruptCancellation cancels the context on the first SIGINT or SIGTERM so in flight requests
// are finished as interrupted. A second signal exits immediately
func AddInterruptCancellation(ctx context.Context, cancel context.CancelFunc) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		interrupts := 0
		for range c {
			interrupts++
			if interrupts > 1 {
				log.Info().Msg("Received multiple interrupt signals. Exiting")
				os.Exit(1)
			}
			log.Info().Msg("Received interrupt signal, finishing in flight requests")
			cancel()
		}
	}()
}

// InitContext initializes the global context used to catch interrupts. This is automatically
// called by Context and Cancel
func InitContext() {
	ctxInitialized.Do(func() {
		ctx, cancel = context.WithCancel(context.Background())
		AddInterruptCancellation(ctx, cancel)
	})
}

// Context returns the global interrupt aware context. It is safe to call from multiple goroutines
// and always returns the same context
func Context() context.Context {
	InitContext()
	return ctx
}

// Cancel cancels the global context
func Cancel() {
	InitContext()
	cancel()
}
