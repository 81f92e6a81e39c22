package exittest_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/exittest"
	"github.com/exitcheck/exitcheck/logger"
)

func TestMain(m *testing.M) {
	os.Exit(exittest.Main(m))
}

var (
	exitsWithThree = exittest.Register(func() {
		os.Exit(3)
	})

	returnsCleanly = exittest.Register(func() {
		// A body that returns without terminating the process exits with
		// the success status.
	})

	panics = exittest.Register(func() {
		var empty []int
		_ = empty[1] // index out of range
	})

	runsNestedExitTest = exittest.Register(func() {
		cfg := exittest.NewConfiguration(logger.Discard)
		ctx := exittest.WithConfiguration(context.Background(), cfg)

		out := exittest.Run(ctx, exitsWithThree, exittest.ExitCode(3))
		if out.Reason == exittest.ReasonNested {
			os.Exit(7)
		}
		os.Exit(13)
	})

	sleepsForever = exittest.Register(func() {
		time.Sleep(time.Hour)
	})
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	cfg := exittest.NewConfiguration(logger.Discard)
	return exittest.WithConfiguration(context.Background(), cfg)
}

func TestExitTestWithExactCode(t *testing.T) {
	out := exittest.Run(testContext(t), exitsWithThree, exittest.ExitCode(3))

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestMismatch(t *testing.T) {
	out := exittest.Run(testContext(t), exitsWithThree, exittest.Success())

	assert.Equal(t, exittest.StatusFailed, out.Status)
	assert.Equal(t, exittest.ReasonMismatch, out.Reason)
	require.NotNil(t, out.Observed)
	assert.Equal(t, exittest.ExitCode(3), *out.Observed)
	assert.Contains(t, out.Message(), "expected success, observed exit code 3")
}

func TestExitTestCleanReturnIsSuccess(t *testing.T) {
	out := exittest.Run(testContext(t), returnsCleanly, exittest.Success())

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestFatalBodyIsFailure(t *testing.T) {
	// Whatever a runtime panic turns into, it is not success.
	out := exittest.Run(testContext(t), panics, exittest.Failure())

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestFatalBodyExactCode(t *testing.T) {
	// The Go runtime exits with status 2 on an unrecovered panic.
	out := exittest.Run(testContext(t), panics, exittest.ExitCode(2))

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestExitTestUnregisteredLocation(t *testing.T) {
	// A location the child cannot resolve is an infrastructure error, not
	// an observed failure.
	bogus := exittest.SourceLocation{File: "never_registered_test.go", Line: 99}
	out := exittest.Run(testContext(t), bogus, exittest.Failure())

	assert.Equal(t, exittest.StatusFailed, out.Status)
	assert.Equal(t, exittest.ReasonHandlerFailed, out.Reason)
	assert.ErrorContains(t, out.Err, "no exit test registered")
	assert.Nil(t, out.Observed)
}

func TestNestedExitTestIsRefused(t *testing.T) {
	// The inner Run inside the child must fail with the recursion error
	// instead of spawning a grandchild; the body signals which branch it
	// took through its exit code.
	out := exittest.Run(testContext(t), runsNestedExitTest, exittest.ExitCode(7))

	require.NoError(t, out.Err)
	assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
}

func TestCancelledExitTestReapsChild(t *testing.T) {
	cfg := exittest.NewConfiguration(logger.Discard)
	driver := &exittest.ProcessDriver{Logger: logger.Discard, SignalGracePeriod: time.Second}
	cfg.SpawnHandler = driver.Spawn

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	ctx = exittest.WithConfiguration(ctx, cfg)

	start := time.Now()
	out := exittest.Run(ctx, sleepsForever, exittest.Success())

	assert.Equal(t, exittest.StatusCancelled, out.Status)
	assert.Nil(t, out.Observed)
	assert.Less(t, time.Since(start), 30*time.Second, "cancelled exit test must not wait out the child")
}

func TestSiblingExitTestsRunConcurrently(t *testing.T) {
	for name, tc := range map[string]struct {
		loc      exittest.SourceLocation
		expected exittest.ExitCondition
	}{
		"exact code":   {exitsWithThree, exittest.ExitCode(3)},
		"clean return": {returnsCleanly, exittest.Success()},
		"fatal body":   {panics, exittest.Failure()},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := exittest.Run(testContext(t), tc.loc, tc.expected)
			require.NoError(t, out.Err)
			assert.Equal(t, exittest.StatusPassed, out.Status, out.Message())
		})
	}
}

func TestOutcomeReport(t *testing.T) {
	cfg := exittest.NewConfiguration(logger.Discard)
	ctx := exittest.WithConfiguration(context.Background(), cfg)

	out := exittest.Run(ctx, exitsWithThree, exittest.ExitCode(3))

	// Report on a passing outcome records nothing against the test.
	out.Report(t)
}
