//go:build !windows

package exittest_test

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/exittest"
)

var killsItself = exittest.Register(func() {
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGKILL)
})

func TestExitTestSignalTermination(t *testing.T) {
	out := exittest.Run(testContext(t), killsItself, exittest.Signal(syscall.SIGKILL))

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestSignalIsFailure(t *testing.T) {
	out := exittest.Run(testContext(t), killsItself, exittest.Failure())

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestSignalDoesNotMatchExitCode(t *testing.T) {
	out := exittest.Run(testContext(t), killsItself, exittest.ExitCode(int(syscall.SIGKILL)))

	assert.Equal(t, exittest.StatusFailed, out.Status)
	assert.Equal(t, exittest.ReasonMismatch, out.Reason)
}
