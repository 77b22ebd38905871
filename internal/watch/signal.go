package watch

import (
	"os"
	"os/signal"
	"syscall"
)

// signalSource converts termination-intent signals into a channel the loop
// can select on, the same contract a blocked-signal descriptor provides.
// Signals delivered here never run their default disposition, so shutdown
// and cleanup always happen on the loop's own goroutine.
type signalSource struct {
	ch chan os.Signal
}

// newSignalSource registers interest in the given signals and returns the
// readiness handle. The caller must not open a session if this fails.
func newSignalSource(signals ...os.Signal) (*signalSource, error) {
	if len(signals) == 0 {
		return nil, ErrSignalSetup
	}
	ch := make(chan os.Signal, len(signals))
	signal.Notify(ch, signals...)
	return &signalSource{ch: ch}, nil
}

// C exposes the readiness channel for multiplexing.
func (s *signalSource) C() <-chan os.Signal { return s.ch }

// Stop releases the registration. Called by the session owner after the loop
// has exited.
func (s *signalSource) Stop() {
	signal.Stop(s.ch)
}

// isShutdownSignal reports whether sig is one of the two termination-intent
// signals. Anything else delivered through the source is logged and ignored.
func isShutdownSignal(sig os.Signal) bool {
	return sig == os.Interrupt || sig == syscall.SIGTERM
}
