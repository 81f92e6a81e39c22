package exittest

import (
	"os"
	"sync/atomic"
	"testing"

	"github.com/exitcheck/exitcheck/logger"
)

// UnregisteredExitStatus is the reserved status a child exits with when the
// identity it was handed resolves to no registered body. The default driver
// reports it as an infrastructure error rather than an observed condition. A
// body that deliberately exits with this status is indistinguishable from a
// registry mismatch, so bodies should avoid it.
const UnregisteredExitStatus = 86

var inExitTest atomic.Bool

// InExitTest reports whether the current process is executing an exit-test
// body. The orchestrator uses it to refuse nested exit tests.
func InExitTest() bool {
	return inExitTest.Load()
}

// Main is the process entry point for exit-test children. Call it from
// TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(exittest.Main(m))
//	}
//
// When the process was spawned as an exit-test child, Main runs the assigned
// body and never returns: the body (or the fallthrough) terminates the
// process. Otherwise it runs the tests as normal.
func Main(m *testing.M) int {
	if marker := os.Getenv(locationEnvVar); marker != "" {
		runChild(marker)
		// Unreachable; runChild always terminates the process.
	}
	return m.Run()
}

func runChild(marker string) {
	l := childLogger()

	loc, err := decodeSourceLocation(marker)
	if err != nil {
		l.Error("Malformed exit test marker: %v", err)
		os.Exit(UnregisteredExitStatus)
	}

	body, ok := Find(loc)
	if !ok {
		l.Error("No exit test registered at %s; the parent and child binaries disagree", loc)
		os.Exit(UnregisteredExitStatus)
	}

	inExitTest.Store(true)
	body()

	// The body returned without terminating the process. A clean return is
	// a normal exit with the success status.
	os.Exit(successExitStatus)
}

func childLogger() logger.Logger {
	l := logger.NewTextLogger()
	if id := os.Getenv(invocationEnvVar); id != "" {
		return l.WithPrefix("[exit test " + id + "]")
	}
	return l
}
