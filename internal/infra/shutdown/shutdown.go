package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
)

// ExitCodeInterrupted is the status used when a second signal forces exit.
const ExitCodeInterrupted = 130

// Signals are the signals that interrupt a command.
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// exit is swapped in tests.
var (
	defaultExit = os.Exit
	exit        = defaultExit
)

// Context returns a copy of parent that is canceled by the first signal in
// Signals. stop releases the signal handler and cancels the context; it is
// safe to call more than once.
func Context(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, Signals...)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("interrupted, stopping", "signal", sig.String())
			cancel()
		case <-done:
			return
		}
		select {
		case <-sigCh:
			exit(ExitCodeInterrupted)
		case <-done:
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel()
		})
	}
	return ctx, stop
}
