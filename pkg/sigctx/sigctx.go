package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals stop the tracker and its commands.
var Signals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

func NotifyContext() (context.Context, context.CancelFunc) {
	return WithSignals(context.Background())
}

// WithSignals returns a copy of parent that is canceled on any of [Signals].
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
