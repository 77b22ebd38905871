package watch

import "errors"

// Sentinel errors for the failure modes a caller may need to distinguish.
var (
	// ErrSignalSetup reports that the cancellation source could not be
	// established; the session must not be opened.
	ErrSignalSetup = errors.New("signal source setup failed")

	// ErrSignalShortRead reports a truncated or closed delivery on the
	// cancellation source. This is a protocol violation, not a recoverable
	// condition, and terminates the session.
	ErrSignalShortRead = errors.New("signal source delivered a short read")

	// ErrMonitorInit reports that the underlying change-notification
	// mechanism is unavailable.
	ErrMonitorInit = errors.New("notification instance unavailable")

	// ErrWatchRegistration reports that a watch could not be registered on
	// the target.
	ErrWatchRegistration = errors.New("watch registration failed")
)
