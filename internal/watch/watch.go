package watch

import (
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
)

// Session is one active monitoring context: the watched target, its change
// source, and the command run on quiescence. A session holds at most one
// registration and is owned exclusively by the loop for its lifetime.
type Session struct {
	target  string
	command string
	source  eventSource
	logger  *zap.Logger
}

// Run watches target for content modification and executes command after
// each burst of changes settles. It blocks until a termination signal
// arrives, the command requests a stop through a nonzero normal exit, or a
// fatal source error occurs. The continuous flag is accepted for interface
// compatibility; the loop does not currently distinguish the two modes.
func Run(target, command string, continuous, verbose bool) error {
	logger := createLogger(verbose)
	defer logger.Sync()

	signals, err := newSignalSource(os.Interrupt, syscall.SIGTERM)
	if err != nil {
		return fmt.Errorf("initialising signal handler: %w", err)
	}
	defer signals.Stop()

	source, err := newPlatformSource(target)
	if err != nil {
		return fmt.Errorf("initialising watch handler: %w", err)
	}

	sess := &Session{
		target:  target,
		command: command,
		source:  source,
		logger:  logger,
	}
	defer sess.shutdown()

	logger.Debug("monitoring started",
		zap.String("target", target),
		zap.Bool("continuous", continuous),
	)

	err = sess.loop(loopSources{
		signals: signals.C(),
		batches: source.Batches(),
		errs:    source.Errors(),
	}, shellRunner{})

	logger.Debug("closing down")
	return err
}

// shutdown deregisters the watch and releases the notification instance.
// Every exit path of Run routes through here; repeated calls are no-ops.
func (sess *Session) shutdown() {
	if sess.source == nil {
		return
	}
	if err := sess.source.Close(); err != nil {
		sess.logger.Warn("closing change source", zap.Error(err))
	}
	sess.source = nil
}
