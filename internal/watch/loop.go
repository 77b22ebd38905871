package watch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Debounce timing: the short window while changes are pending lets a burst of
// rapid edits coalesce into a single trigger; the long window avoids
// busy-waiting while the target is quiet.
const (
	idleTimeout   = 1000 * time.Millisecond
	settleTimeout = 100 * time.Millisecond
)

// loopSources carries the readiness channels the debounce loop multiplexes.
// Injectable so tests can drive the loop without OS notification mechanisms.
type loopSources struct {
	signals <-chan os.Signal
	batches <-chan []ChangeRecord
	errs    <-chan error
}

// loop is the debounce state machine. It is the sole owner of the pending
// count and runs until a shutdown signal arrives, the command requests a
// stop, or a source fails. A nil return is clean termination.
func (sess *Session) loop(src loopSources, run runner) error {
	pending := 0
	timer := time.NewTimer(idleTimeout)
	defer timer.Stop()

	for {
		timeout := idleTimeout
		if pending > 0 {
			timeout = settleTimeout
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(timeout)

		select {
		case sig, ok := <-src.signals:
			if !ok {
				return ErrSignalShortRead
			}
			if isShutdownSignal(sig) {
				sess.logger.Debug("received shutdown signal")
				return nil
			}
			sess.logger.Debug("received unexpected signal", zap.String("signal", sig.String()))

		case batch, ok := <-src.batches:
			if !ok {
				return sess.sourceClosed(src)
			}
			pending += sess.drain(batch)

		case err := <-src.errs:
			return fmt.Errorf("waiting on change source: %w", err)

		case <-timer.C:
			// The trigger fires only on a truly quiet expiry: anything that
			// raced the wakeup wins over it. A queued shutdown or source
			// failure terminates before one more invocation can happen; a
			// queued batch restarts the window.
			action, count, err := sess.settleCheck(src)
			switch action {
			case wakeTerminate:
				return err
			case wakeActivity:
				pending += count
				continue
			}
			if pending == 0 {
				continue
			}
			pending = 0
			sess.logger.Debug("changes settled, executing", zap.String("command", sess.command))
			res, err := run.run(sess.command)
			if err != nil {
				sess.logger.Error("command could not be started", zap.Error(err))
				continue
			}
			sess.logger.Debug("command finished",
				zap.Bool("exited", res.exited),
				zap.Int("code", res.code),
			)
			if res.stop() {
				return nil
			}
		}
	}
}

// wakeAction classifies what a timer expiry found pending on the sources.
type wakeAction int

const (
	wakeQuiet     wakeAction = iota // nothing raced the expiry
	wakeActivity                    // a batch or stray signal landed, no trigger this round
	wakeTerminate                   // shutdown or fatal condition, stop the loop
)

// settleCheck inspects the sources once, without blocking, before a timer
// expiry is allowed to trigger. The wait only counts as elapsed quiet time
// when no source was ready at the same moment.
func (sess *Session) settleCheck(src loopSources) (wakeAction, int, error) {
	select {
	case sig, ok := <-src.signals:
		if !ok {
			return wakeTerminate, 0, ErrSignalShortRead
		}
		if isShutdownSignal(sig) {
			sess.logger.Debug("received shutdown signal")
			return wakeTerminate, 0, nil
		}
		sess.logger.Debug("received unexpected signal", zap.String("signal", sig.String()))
		return wakeActivity, 0, nil
	case err := <-src.errs:
		return wakeTerminate, 0, fmt.Errorf("waiting on change source: %w", err)
	case batch, ok := <-src.batches:
		if !ok {
			return wakeTerminate, 0, sess.sourceClosed(src)
		}
		return wakeActivity, sess.drain(batch), nil
	default:
		return wakeQuiet, 0, nil
	}
}

// sourceClosed maps an unexpectedly closed batch channel to the source's
// pending error when one was reported, so the cause is not masked.
func (sess *Session) sourceClosed(src loopSources) error {
	select {
	case err := <-src.errs:
		return fmt.Errorf("waiting on change source: %w", err)
	default:
	}
	return errors.New("change source closed unexpectedly")
}

// drain consumes one decoded batch, logging every record, and returns the
// batch's modify-class count.
func (sess *Session) drain(batch []ChangeRecord) int {
	for _, rec := range batch {
		reportRecord(sess.logger, rec)
	}
	return countModify(batch)
}
