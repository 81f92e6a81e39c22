package exittest

import (
	"time"

	"github.com/exitcheck/exitcheck/logger"
)

// EventType captures the lifecycle notifications emitted while running an
// exit test.
type EventType string

const (
	// EventExitTestStarted is emitted immediately before the spawn handler
	// is invoked.
	EventExitTestStarted EventType = "exit_test_started"

	// EventExitTestEnded is emitted after the outcome has been recorded.
	EventExitTestEnded EventType = "exit_test_ended"

	// EventIssueRecorded is emitted when an exit test fails, whether from a
	// condition mismatch or an infrastructure error.
	EventIssueRecorded EventType = "issue_recorded"
)

// Event is a single lifecycle notification. Expected and observed conditions
// are carried so observers can report mismatches without re-deriving them.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Test      ExitTest
	Observed  *ExitCondition
	Status    OutcomeStatus
	Reason    FailureReason
	Err       error
	Message   string
}

// Observer consumes lifecycle events. Implementations must be safe for
// concurrent use: sibling exit tests emit events from their own goroutines.
type Observer interface {
	ObserveEvent(e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e Event)

func (f ObserverFunc) ObserveEvent(e Event) { f(e) }

// LogObserver writes every event to a logger.
type LogObserver struct {
	Logger logger.Logger
}

func (o LogObserver) ObserveEvent(e Event) {
	switch e.Type {
	case EventExitTestStarted:
		o.Logger.Info("Exit test at %s started (expecting %s)", e.Test.Location, e.Test.Expected)
	case EventExitTestEnded:
		o.Logger.Info("Exit test at %s ended: %s", e.Test.Location, e.Status)
	case EventIssueRecorded:
		o.Logger.Error("Exit test at %s recorded an issue: %s", e.Test.Location, e.Message)
	default:
		o.Logger.Debug("Exit test at %s emitted %s", e.Test.Location, e.Type)
	}
}
