package exittest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/exitcheck/exitcheck/metrics"
)

// ErrNoConfiguration is reported when Run is called with a context that has
// no associated run configuration.
var ErrNoConfiguration = errors.New("no run configuration associated with the current context")

// ErrNestedExitTest is reported when an exit test is started from within an
// exit-test body.
var ErrNestedExitTest = errors.New("exit tests cannot be run within an exit test body")

// ErrNoSpawnHandler is reported when the run configuration has no spawn
// handler, not even the default driver.
var ErrNoSpawnHandler = errors.New("no spawn handler is configured")

// ExitTest describes one exit-test invocation: the identity of the body to
// run, the condition it is expected to produce, and an ID unique to this
// invocation. The body itself is reachable only through the registry of the
// process that registered it.
type ExitTest struct {
	Location     SourceLocation
	Expected     ExitCondition
	InvocationID uuid.UUID
}

// OutcomeStatus is the terminal state of one exit-test invocation.
type OutcomeStatus int

const (
	StatusPassed OutcomeStatus = iota
	StatusFailed
	StatusCancelled
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// FailureReason distinguishes why an exit test failed. A condition mismatch
// is an ordinary expectation failure; every other reason is an
// infrastructure problem reported with its underlying error.
type FailureReason string

const (
	ReasonNone          FailureReason = ""
	ReasonNoContext     FailureReason = "no_context"
	ReasonNested        FailureReason = "nested_exit_test"
	ReasonHandlerFailed FailureReason = "handler_error"
	ReasonNotInvoked    FailureReason = "not_invoked"
	ReasonMismatch      FailureReason = "condition_mismatch"
)

// Outcome is the recorded result of one exit-test invocation.
type Outcome struct {
	Status   OutcomeStatus
	Reason   FailureReason
	Test     ExitTest
	Observed *ExitCondition
	Err      error
}

// Passed reports whether the exit test passed.
func (o Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// Message renders the outcome for diagnostics. Mismatches always carry both
// the expected and the observed classification.
func (o Outcome) Message() string {
	switch {
	case o.Status == StatusPassed:
		return fmt.Sprintf("exit test at %s passed: %s", o.Test.Location, o.Test.Expected)
	case o.Status == StatusCancelled:
		return fmt.Sprintf("exit test at %s was cancelled", o.Test.Location)
	case o.Reason == ReasonMismatch:
		return fmt.Sprintf("exit test at %s failed: expected %s, observed %s",
			o.Test.Location, o.Test.Expected, *o.Observed)
	case o.Reason == ReasonNotInvoked:
		return fmt.Sprintf("exit test at %s was not invoked by the spawn handler", o.Test.Location)
	default:
		return fmt.Sprintf("exit test at %s failed: %v", o.Test.Location, o.Err)
	}
}

// Report records the outcome against a testing.TB: failures become test
// errors, and a cancelled exit test is neither pass nor fail.
func (o Outcome) Report(t testing.TB) {
	t.Helper()
	switch o.Status {
	case StatusFailed:
		t.Error(o.Message())
	case StatusCancelled:
		t.Log(o.Message())
	}
}

// Run executes the exit test registered at loc in an isolated child
// environment and compares how that environment terminated against
// expected.
//
// The spawn handler is invoked at most once per call. There are no retries;
// if the surrounding test is retried by a higher-level policy, each retry is
// a fresh invocation.
//
// Errors local to one exit test are recorded in its Outcome and never abort
// sibling tests.
func Run(ctx context.Context, loc SourceLocation, expected ExitCondition) Outcome {
	test := ExitTest{
		Location:     loc,
		Expected:     expected,
		InvocationID: uuid.New(),
	}

	cfg, ok := ConfigurationFromContext(ctx)
	if !ok {
		// Without a configuration there is nowhere to emit events either.
		return Outcome{
			Status: StatusFailed,
			Reason: ReasonNoContext,
			Test:   test,
			Err:    ErrNoConfiguration,
		}
	}

	if InExitTest() {
		out := Outcome{
			Status: StatusFailed,
			Reason: ReasonNested,
			Test:   test,
			Err:    ErrNestedExitTest,
		}
		record(cfg, out, time.Now())
		return out
	}

	handler := cfg.SpawnHandler
	if handler == nil {
		handler = func(context.Context, *ExitTest) (*ExitCondition, error) {
			return nil, ErrNoSpawnHandler
		}
	}

	cfg.emit(Event{Type: EventExitTestStarted, Test: test})
	cfg.logger().Debug("Running exit test at %s (invocation %s)", test.Location, test.InvocationID)

	start := time.Now()
	observed, err := handler(ctx, &test)

	out := Outcome{Test: test, Observed: observed}
	switch {
	case ctx.Err() != nil:
		// The run was cancelled while the child was outstanding. The child
		// has been reaped by the handler; no comparison is performed.
		out.Status = StatusCancelled
		out.Err = ctx.Err()
		out.Observed = nil

	case err != nil:
		out.Status = StatusFailed
		out.Reason = ReasonHandlerFailed
		out.Err = fmt.Errorf("spawn handler: %w", err)

	case observed == nil:
		out.Status = StatusFailed
		out.Reason = ReasonNotInvoked

	case expected.Matches(*observed):
		out.Status = StatusPassed

	default:
		out.Status = StatusFailed
		out.Reason = ReasonMismatch
	}

	record(cfg, out, start)
	return out
}

// record finalizes an outcome: metrics, then the issue event if any, then
// the ended event. Emission strictly follows outcome recording.
func record(cfg *Configuration, out Outcome, start time.Time) {
	cfg.Metrics.Count("exit_test.runs", 1, metrics.Tags{
		"status": out.Status.String(),
		"reason": string(out.Reason),
	})
	cfg.Metrics.Timing("exit_test.duration", time.Since(start))

	if out.Status == StatusFailed {
		cfg.emit(Event{
			Type:     EventIssueRecorded,
			Test:     out.Test,
			Observed: out.Observed,
			Status:   out.Status,
			Reason:   out.Reason,
			Err:      out.Err,
			Message:  out.Message(),
		})
	}

	cfg.emit(Event{
		Type:     EventExitTestEnded,
		Test:     out.Test,
		Observed: out.Observed,
		Status:   out.Status,
		Reason:   out.Reason,
		Err:      out.Err,
	})
}
