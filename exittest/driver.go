package exittest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/exitcheck/exitcheck/env"
	"github.com/exitcheck/exitcheck/internal/self"
	"github.com/exitcheck/exitcheck/logger"
	"github.com/exitcheck/exitcheck/metrics"
	"github.com/exitcheck/exitcheck/process"
)

const (
	// locationEnvVar carries the encoded source location from parent to
	// child. Its presence is what tells a process it is an exit-test child.
	locationEnvVar = "EXITCHECK_EXIT_TEST_LOCATION"

	// invocationEnvVar carries the invocation ID, so child diagnostics can
	// be correlated with the parent's events.
	invocationEnvVar = "EXITCHECK_EXIT_TEST_INVOCATION"
)

// ProcessDriver is the default spawn handler. It re-invokes the current
// binary with the exit test's identity in the environment, waits for the
// child to terminate, and classifies the wait status.
type ProcessDriver struct {
	// Logger receives child lifecycle diagnostics. Defaults to
	// logger.Discard.
	Logger logger.Logger

	// Metrics, when non-nil, receives child process timings.
	Metrics *metrics.Scope

	// SignalGracePeriod bounds how long a cancelled child may linger between
	// interrupt and kill.
	SignalGracePeriod time.Duration
}

// Spawn implements SpawnHandler.
func (d *ProcessDriver) Spawn(ctx context.Context, test *ExitTest) (*ExitCondition, error) {
	l := d.Logger
	if l == nil {
		l = logger.Discard
	}

	marker, err := test.Location.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("preparing exit test child: %w", err)
	}

	// The child re-enters the same binary with the original arguments, plus
	// the identity markers. On startup it detects the markers and runs the
	// body instead of normal test execution.
	environment := env.FromSlice(os.Environ())
	environment.Set(locationEnvVar, string(marker))
	environment.Set(invocationEnvVar, test.InvocationID.String())

	p := process.New(l, process.Config{
		Path:              self.Path(ctx),
		Args:              os.Args[1:],
		Env:               environment.ToSlice(),
		SignalGracePeriod: d.SignalGracePeriod,
	})

	l.Debug("[ExitTest %s] Spawning child for %s", test.InvocationID, test.Location)

	start := time.Now()
	if err := p.Run(ctx); err != nil {
		return nil, fmt.Errorf("spawning exit test child: %w", err)
	}
	d.Metrics.Timing("exit_test.child.duration", time.Since(start))

	ws, err := p.WaitStatus()
	if err != nil {
		return nil, fmt.Errorf("reading exit test child status: %w", err)
	}

	observed := ClassifyWaitStatus(ws)
	l.Debug("[ExitTest %s] Child PID %d terminated: %s", test.InvocationID, p.Pid(), observed)

	// The reserved status means the child could not resolve the identity it
	// was given, which is a parent/child registry mismatch, not a test
	// result.
	if code, ok := observed.ExitStatus(); ok && code == UnregisteredExitStatus {
		return nil, fmt.Errorf("child process found no exit test registered at %s (exited with reserved status %d)",
			test.Location, UnregisteredExitStatus)
	}

	return &observed, nil
}
