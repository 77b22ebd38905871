package watch

import (
	"errors"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// execResult reports how one command invocation terminated.
type execResult struct {
	exited bool // the child went through a normal exit path
	code   int  // exit code, meaningful only when exited is true
}

// stop reports whether the watch session should end after this invocation.
// The policy is deliberately asymmetric: only a normal exit with nonzero
// status stops the session. A child killed by a signal does not, and neither
// does a clean zero exit.
func (r execResult) stop() bool { return r.exited && r.code != 0 }

// runner abstracts command invocation so tests can substitute execution.
type runner interface {
	run(command string) (execResult, error)
}

// shellRunner invokes the command through a shell, blocking until the child
// terminates. No timeout or cancellation applies; the command runs to
// completion unconditionally.
type shellRunner struct{}

func (shellRunner) run(command string) (execResult, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return execResult{exited: true, code: 0}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.ProcessState.Exited() {
			// Killed by a signal or faulted: not a normal exit.
			return execResult{}, nil
		}
		return execResult{exited: true, code: exitErr.ExitCode()}, nil
	}
	// The shell could not be started at all.
	return execResult{}, err
}

// runOnce performs a single command invocation outside the loop. The loop
// carries its own inline execution path; this helper exists for one-off
// invocations and mirrors that logic.
func runOnce(r runner, command string, logger *zap.Logger) (execResult, error) {
	logger.Debug("executing on change", zap.String("command", command))
	return r.run(command)
}
