//go:build !windows

package exittest

import (
	"fmt"
	"syscall"

	"github.com/exitcheck/exitcheck/process"
)

// Signal is the condition of a process terminated by the given signal.
func Signal(sig syscall.Signal) ExitCondition {
	return signalCondition(sig)
}

// Classify decodes a raw POSIX wait status into an ExitCondition.
func Classify(raw uint32) ExitCondition {
	ws := syscall.WaitStatus(raw)
	switch {
	case ws.Signaled():
		return signalCondition(ws.Signal())
	case ws.Exited():
		return ExitCode(ws.ExitStatus())
	default:
		// Stopped or continued; a wait status for a process that has not
		// terminated is not a termination at all, so classify conservatively.
		return Failure()
	}
}

// Exit codes are reported modulo 256 on POSIX platforms.
func maskExitCode(code int) int {
	return code & 0xff
}

func parseSignalCondition(s string) (ExitCondition, error) {
	sig, err := process.ParseSignal(s)
	if err != nil {
		return ExitCondition{}, fmt.Errorf("parsing signal condition: %w", err)
	}
	return Signal(syscall.Signal(sig)), nil
}
