// Package exittest runs a registered test body in a child process, observes
// how that process terminates, and compares the observation against an
// expected exit condition.
//
// Bodies are registered before any test runs and are addressed only by their
// source location, which is the single piece of identity that crosses the
// process boundary. The parent re-invokes its own binary with a marker
// environment variable; the child resolves the marker back to a body through
// the registry and runs it.
package exittest

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/exitcheck/exitcheck/process"
)

type conditionKind uint8

const (
	condSuccess conditionKind = iota
	condFailure
	condExitCode
	condSignal
)

// successExitStatus is the status code a process exits with to indicate
// success.
const successExitStatus = 0

// ExitCondition classifies how a process terminated. Exactly one of the four
// cases is active: success, generic failure, a specific exit code, or a
// specific signal.
type ExitCondition struct {
	kind conditionKind
	code int
	sig  syscall.Signal
}

// Success is the condition of a process that exited normally with the
// platform's success status code.
func Success() ExitCondition {
	return ExitCondition{kind: condSuccess}
}

// Failure is the condition of a process that terminated with any non-success
// status code, or was terminated by any signal. As an expectation it matches
// every observation other than success.
func Failure() ExitCondition {
	return ExitCondition{kind: condFailure}
}

// ExitCode is the condition of a process that exited normally with the given
// status code. On POSIX platforms only the low 8 unsigned bits of the code
// are significant; a masked code equal to the success status is the same
// condition as Success.
func ExitCode(code int) ExitCondition {
	code = maskExitCode(code)
	if code == successExitStatus {
		return Success()
	}
	return ExitCondition{kind: condExitCode, code: code}
}

// signalCondition is the observed-side constructor for signal termination.
// The expectation-side constructor, Signal, is only available on platforms
// that can report signal termination distinctly from generic failure.
func signalCondition(sig syscall.Signal) ExitCondition {
	return ExitCondition{kind: condSignal, sig: sig}
}

// Matches reports whether an observed condition satisfies this expected
// condition. Matching is not structural equality: an expected Failure
// matches any non-success observation, while exit codes and signals are
// separate classification axes that never cross-match.
func (c ExitCondition) Matches(observed ExitCondition) bool {
	switch c.kind {
	case condSuccess:
		return observed.kind == condSuccess
	case condFailure:
		return observed.kind != condSuccess
	case condExitCode:
		return observed.kind == condExitCode && c.code == observed.code
	case condSignal:
		return observed.kind == condSignal && c.sig == observed.sig
	default:
		return false
	}
}

// IsSuccess reports whether the condition is the success case.
func (c ExitCondition) IsSuccess() bool {
	return c.kind == condSuccess
}

// ExitStatus returns the status code for the success and exit-code cases.
func (c ExitCondition) ExitStatus() (int, bool) {
	switch c.kind {
	case condSuccess:
		return successExitStatus, true
	case condExitCode:
		return c.code, true
	default:
		return 0, false
	}
}

// TerminationSignal returns the signal for the signal case.
func (c ExitCondition) TerminationSignal() (syscall.Signal, bool) {
	if c.kind != condSignal {
		return 0, false
	}
	return c.sig, true
}

func (c ExitCondition) String() string {
	switch c.kind {
	case condSuccess:
		return "success"
	case condFailure:
		return "failure"
	case condExitCode:
		return fmt.Sprintf("exit code %d", c.code)
	case condSignal:
		return fmt.Sprintf("signal %s (%d)", process.SignalString(c.sig), int(c.sig))
	default:
		return "unknown"
	}
}

// ClassifyWaitStatus decodes a portable wait status into an ExitCondition.
func ClassifyWaitStatus(ws process.WaitStatus) ExitCondition {
	if ws.Signaled() {
		return signalCondition(ws.Signal())
	}
	return ExitCode(ws.ExitStatus())
}

// ParseCondition converts the text form of an exit condition into an
// ExitCondition. Accepted forms are "success", "failure", "code=N" and, on
// platforms that report signal termination, "signal=NAME" or "signal=N".
func ParseCondition(s string) (ExitCondition, error) {
	switch {
	case s == "success":
		return Success(), nil
	case s == "failure":
		return Failure(), nil
	case strings.HasPrefix(s, "code="):
		code, err := strconv.Atoi(strings.TrimPrefix(s, "code="))
		if err != nil {
			return ExitCondition{}, fmt.Errorf("parsing exit code in %q: %w", s, err)
		}
		return ExitCode(code), nil
	case strings.HasPrefix(s, "signal="):
		return parseSignalCondition(strings.TrimPrefix(s, "signal="))
	default:
		return ExitCondition{}, fmt.Errorf("unknown exit condition %q", s)
	}
}
