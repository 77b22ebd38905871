package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShellRunnerZeroExit(t *testing.T) {
	res, err := shellRunner{}.run("true")
	require.NoError(t, err)
	assert.True(t, res.exited)
	assert.Zero(t, res.code)
	assert.False(t, res.stop())
}

func TestShellRunnerNonzeroExit(t *testing.T) {
	res, err := shellRunner{}.run("exit 3")
	require.NoError(t, err)
	assert.True(t, res.exited)
	assert.Equal(t, 3, res.code)
	assert.True(t, res.stop())
}

func TestShellRunnerSignalKilled(t *testing.T) {
	res, err := shellRunner{}.run("kill -KILL $$")
	require.NoError(t, err)
	assert.False(t, res.exited, "a signal-killed child is not a normal exit")
	assert.False(t, res.stop())
}

func TestExecResultStopPolicy(t *testing.T) {
	cases := []struct {
		name string
		res  execResult
		stop bool
	}{
		{"zero exit continues", execResult{exited: true, code: 0}, false},
		{"nonzero exit stops", execResult{exited: true, code: 1}, true},
		{"signal kill continues", execResult{exited: false, code: 0}, false},
		{"signal kill with code continues", execResult{exited: false, code: 9}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.stop, tc.res.stop())
		})
	}
}

func TestRunOnce(t *testing.T) {
	runner := newFakeRunner(execResult{exited: true, code: 0})
	res, err := runOnce(runner, "echo hi", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, res.exited)
	assert.Equal(t, []string{"echo hi"}, runner.calls)
}
