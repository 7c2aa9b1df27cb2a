package runtime

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext derives a context from parent that is cancelled on SIGINT or
// SIGTERM. Calling the returned stop also cancels it, which main uses to shut
// down when the listener dies.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
